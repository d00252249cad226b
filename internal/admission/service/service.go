// Package service enforces the per-identity admission limits in front of
// payment intent creation.
//
// Two fixed-window limits apply to every submission, in a fixed order: by
// normalized email (5 per hour), then by client IP (10 per hour). Both must
// pass; the first failure short-circuits. Counters live behind the
// CounterStore interface, with an in-memory reference implementation and a
// Redis-backed store for multi-instance deployments.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"paygate/internal/admission/config"
	"paygate/internal/admission/models"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/requestcontext"
)

// CounterStore counts attempts against fixed windows keyed by identity.
type CounterStore interface {
	Incr(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

// Metrics records admission outcomes for observability.
type Metrics interface {
	IncrementAllowed(store string)
	IncrementDenied(scope string)
}

// Service applies the email and IP admission limits.
// Thread-safe for concurrent use by HTTP handlers.
type Service struct {
	counters  CounterStore
	logger    *slog.Logger
	config    *config.Config
	metrics   Metrics
	storeName string
}

// Option configures a Service instance.
type Option func(*Service)

// WithLogger sets the structured logger for audit logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig overrides the default limits.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStoreName labels the backing store ("memory" or "redis") in metrics.
func WithStoreName(name string) Option {
	return func(s *Service) {
		s.storeName = name
	}
}

// New creates an admission service over the given counter store.
func New(counters CounterStore, opts ...Option) (*Service, error) {
	if counters == nil {
		return nil, errors.New("counter store is required")
	}

	svc := &Service{
		counters:  counters,
		config:    config.DefaultConfig(),
		storeName: "memory",
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Admit runs the email limit, then the IP limit. The email must already be
// normalized (the validated request's email is the rate-limit identity).
// A denial is a decision, not an error; errors indicate store failures.
func (s *Service) Admit(ctx context.Context, email, ip string) (*models.AdmissionDecision, error) {
	emailResult, err := s.check(ctx, models.ScopeEmail, email, s.config.EmailMaxAttempts)
	if err != nil {
		return nil, err
	}
	if !emailResult.Allowed {
		return s.deny(ctx, models.ScopeEmail, emailResult, email, ip), nil
	}

	ipResult, err := s.check(ctx, models.ScopeIP, ip, s.config.IPMaxAttempts)
	if err != nil {
		return nil, err
	}
	if !ipResult.Allowed {
		return s.deny(ctx, models.ScopeIP, ipResult, email, ip), nil
	}

	if s.metrics != nil {
		s.metrics.IncrementAllowed(s.storeName)
	}
	return &models.AdmissionDecision{Allowed: true, Scope: models.ScopeIP, Result: ipResult}, nil
}

// CheckEmail runs only the by-email limit.
func (s *Service) CheckEmail(ctx context.Context, email string) (*models.RateLimitResult, error) {
	return s.check(ctx, models.ScopeEmail, email, s.config.EmailMaxAttempts)
}

// CheckIP runs only the by-IP limit.
func (s *Service) CheckIP(ctx context.Context, ip string) (*models.RateLimitResult, error) {
	return s.check(ctx, models.ScopeIP, ip, s.config.IPMaxAttempts)
}

// Reset clears the counter for one identity. Used by tests and operators.
func (s *Service) Reset(ctx context.Context, scope models.LimitScope, identifier string) error {
	key, err := models.NewRateLimitKey(scope, identifier)
	if err != nil {
		return err
	}
	return s.counters.Reset(ctx, key.String())
}

func (s *Service) check(ctx context.Context, scope models.LimitScope, identifier string, limit int) (*models.RateLimitResult, error) {
	key, err := models.NewRateLimitKey(scope, identifier)
	if err != nil {
		return nil, err
	}

	result, err := s.counters.Incr(ctx, key.String(), limit, s.config.Window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check "+string(scope)+" rate limit")
	}
	return result, nil
}

func (s *Service) deny(ctx context.Context, scope models.LimitScope, result *models.RateLimitResult, email, ip string) *models.AdmissionDecision {
	if s.metrics != nil {
		s.metrics.IncrementDenied(string(scope))
	}
	s.logAudit(ctx, string(scope)+"_rate_limit_exceeded",
		"email", email,
		"ip", ip,
		"limit", result.Limit,
		"reset_at", result.ResetAt,
	)
	return &models.AdmissionDecision{Allowed: false, Scope: scope, Result: result}
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
