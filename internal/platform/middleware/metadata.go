package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"paygate/pkg/requestcontext"
)

// MaxForwardedHeaderLength is the maximum allowed length for forwarded-IP
// headers to prevent header injection attacks.
const MaxForwardedHeaderLength = 500

// UnknownIP is the fallback identity when no header or connection address
// yields a usable client IP. It still participates in rate limiting so that
// header-less clients share one bucket instead of bypassing the limiter.
const UnknownIP = "unknown"

// MetadataConfig holds configuration for the Metadata middleware.
type MetadataConfig struct {
	// ForwardedIPHeader is the deployment platform's own forwarded-IP header,
	// consulted after X-Forwarded-For (e.g. the CDN's client-connection header).
	ForwardedIPHeader string
}

// Metadata extracts the client IP and User-Agent from the request and adds
// them to the context for rate limiting and fraud observability.
//
// The IP is resolved from, in order: X-Forwarded-For (first entry, trimmed),
// the configured platform forwarded-IP header, X-Real-IP, the raw connection
// address, else the literal "unknown".
func Metadata(cfg *MetadataConfig) func(http.Handler) http.Handler {
	header := ""
	if cfg != nil {
		header = cfg.ForwardedIPHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := resolveClientIP(r, header)
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveClientIP(r *http.Request, platformHeader string) string {
	if ip := firstForwardedEntry(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if platformHeader != "" {
		if ip := firstForwardedEntry(r.Header.Get(platformHeader)); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" && len(ip) <= MaxForwardedHeaderLength {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return UnknownIP
}

// firstForwardedEntry returns the first comma-separated entry of a
// forwarded-for style header value, trimmed. Oversized headers are ignored.
func firstForwardedEntry(value string) string {
	if value == "" || len(value) > MaxForwardedHeaderLength {
		return ""
	}
	if before, _, ok := strings.Cut(value, ","); ok {
		return strings.TrimSpace(before)
	}
	return strings.TrimSpace(value)
}

// BrowserFamily parses the User-Agent stored in ctx and returns the browser
// name and version for audit logging. Returns "" for empty or bot agents.
func BrowserFamily(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		return "bot"
	}
	name, version := ua.Browser()
	if name == "" {
		return ""
	}
	if version == "" {
		return name
	}
	return name + "/" + version
}
