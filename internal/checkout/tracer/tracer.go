// Package tracer provides a lightweight tracing abstraction for the checkout
// module.
//
// It defines an internal tracer interface that doesn't depend directly on
// OpenTelemetry APIs, so the checkout service can emit distributed traces
// while remaining decoupled from a specific tracing implementation.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// If err is non-nil, the span is marked as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to
	// child operations. The span must be ended by calling Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a SHA-256 hash of the email for safe logging in traces.
// This allows correlation of traces without exposing PII.
func HashEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return hex.EncodeToString(hash[:8]) // First 8 bytes for brevity
}

// Span names used by the checkout module.
const (
	SpanCreateIntent  = "checkout.create_intent"
	SpanAdmit         = "checkout.admit"
	SpanProcessorCall = "checkout.processor.call"
)

// Attribute keys used by the checkout module.
const (
	AttrEmailHash = "email_hash"
	AttrClientIP  = "client_ip"
	AttrAmount    = "amount"
	AttrCurrency  = "currency"
	AttrAdmitted  = "admitted"
	AttrDenyScope = "deny_scope"
)
