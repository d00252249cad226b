package models

import (
	"fmt"
	"strings"
	"time"

	dErrors "paygate/pkg/domain-errors"
)

// LimitScope identifies which identity dimension a rate limit applies to.
type LimitScope string

const (
	ScopeEmail LimitScope = "email"
	ScopeIP    LimitScope = "ip"
)

func (s LimitScope) IsValid() bool {
	return s == ScopeEmail || s == ScopeIP
}

// RateLimitKey is the counter-store key for one identity in one scope.
// Wire format: "<scope>:<identifier>", e.g. "email:a@b.co" or "ip:203.0.113.7".
type RateLimitKey struct {
	Scope      LimitScope
	Identifier string
}

// NewRateLimitKey builds a key, validating its parts.
// The identifier must already be normalized (emails lowercased and trimmed).
func NewRateLimitKey(scope LimitScope, identifier string) (RateLimitKey, error) {
	if !scope.IsValid() {
		return RateLimitKey{}, dErrors.New(dErrors.CodeInternal, "invalid rate limit scope")
	}
	if identifier == "" {
		return RateLimitKey{}, dErrors.New(dErrors.CodeInternal, "rate limit identifier cannot be empty")
	}
	if strings.ContainsAny(identifier, " \t\r\n") {
		return RateLimitKey{}, dErrors.New(dErrors.CodeInternal, "rate limit identifier contains whitespace")
	}
	return RateLimitKey{Scope: scope, Identifier: identifier}, nil
}

func (k RateLimitKey) String() string {
	return fmt.Sprintf("%s:%s", k.Scope, k.Identifier)
}

// RateLimitResult is the outcome of a single fixed-window check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// AdmissionDecision is the combined outcome of the email and IP checks.
// When denied, Scope names the limit that rejected the request and Result
// carries its window expiry so callers can compute a retry delay.
type AdmissionDecision struct {
	Allowed bool
	Scope   LimitScope
	Result  *RateLimitResult
}

// RetryMinutes returns the whole minutes until the denying window expires,
// rounded up, never below 1. Used to build the client-facing retry message.
func (d *AdmissionDecision) RetryMinutes(now time.Time) int {
	if d.Result == nil {
		return 1
	}
	remaining := d.Result.ResetAt.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
