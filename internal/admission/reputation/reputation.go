// Package reputation holds the placeholder suspicious-IP check.
//
// The pattern list covers a couple of known Tor exit ranges and nothing else;
// a real deployment would query a dedicated IP reputation service. The check
// is an observability signal only: callers log and count matches but never
// block on them.
package reputation

import (
	"net/netip"
	"strings"
)

// suspiciousPrefixes lists address prefixes treated as suspicious.
// Placeholder data, not a real reputation feed.
var suspiciousPrefixes = []string{
	"185.220.", // Tor exit range (example)
	"199.87.",  // Tor exit range (example)
}

// Checker classifies client IPs against the placeholder pattern list.
type Checker struct {
	prefixes []string
}

// New creates a checker with the default pattern list.
func New() *Checker {
	return &Checker{prefixes: suspiciousPrefixes}
}

// NewWithPrefixes creates a checker with a custom pattern list, for tests.
func NewWithPrefixes(prefixes []string) *Checker {
	return &Checker{prefixes: prefixes}
}

// IsSuspicious reports whether the IP matches a suspicious prefix.
// Loopback and private addresses are never suspicious so local development
// and intra-platform traffic don't pollute the signal.
func (c *Checker) IsSuspicious(ip string) bool {
	if ip == "" || ip == "unknown" {
		return false
	}

	if addr, err := netip.ParseAddr(ip); err == nil {
		if addr.IsLoopback() || addr.IsPrivate() {
			return false
		}
	}

	for _, prefix := range c.prefixes {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}
