package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeInvalidRequest Code = "invalid_request"
	CodeInvalidEmail   Code = "invalid_email"
	CodeInvalidAmount  Code = "invalid_amount"
	CodeRateLimited    Code = "rate_limited"
	CodeConfiguration  Code = "configuration_error"
	CodeInternal       Code = "internal_error"

	// Payment processor error categories. The processor adapter collapses the
	// upstream error taxonomy into these codes; the HTTP layer maps them to
	// statuses and the caller only ever sees a pre-approved message.
	CodeUpstreamAuth    Code = "upstream_auth"
	CodeUpstreamAPI     Code = "upstream_api"
	CodeUpstreamInvalid Code = "upstream_invalid"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
//
// Message carries the client-facing text for this failure. Upstream detail that
// must never reach the client travels in Err and is only ever logged.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
