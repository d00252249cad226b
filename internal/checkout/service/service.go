// Package service orchestrates payment-intent creation: request preparation,
// the suspicious-IP observability check, admission limits, and the processor
// call. Each gate short-circuits with a domain error the HTTP layer can map.
package service

import (
	"context"
	"errors"
	"log/slog"

	admissionModels "paygate/internal/admission/models"
	"paygate/internal/checkout/models"
	"paygate/internal/checkout/processor"
	"paygate/internal/checkout/tracer"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/httputil"
	"paygate/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/service-mocks.go -package=mocks Admitter,IntentCreator

// Admitter applies the per-email and per-IP admission limits.
type Admitter interface {
	Admit(ctx context.Context, email, ip string) (*admissionModels.AdmissionDecision, error)
}

// IntentCreator creates a payment intent with the external processor.
type IntentCreator interface {
	CreateIntent(ctx context.Context, p processor.IntentParams) (*models.IntentResponse, error)
}

// ReputationChecker classifies client IPs. Log-only signal, never blocks.
type ReputationChecker interface {
	IsSuspicious(ip string) bool
}

// SignalMetrics counts the suspicious-IP observability signal.
type SignalMetrics interface {
	IncrementSuspiciousIP()
}

// LimitExceededDenial is returned when an admission limit rejects the request.
// It carries the denying scope and window expiry so the HTTP layer can build
// the retry-delay message.
type LimitExceededDenial struct {
	Decision *admissionModels.AdmissionDecision
}

func (e *LimitExceededDenial) Error() string {
	return string(e.Decision.Scope) + " rate limit exceeded"
}

// Service is the payment-intent creation pipeline.
type Service struct {
	admission  Admitter
	intents    IntentCreator
	reputation ReputationChecker
	tracer     tracer.Tracer
	logger     *slog.Logger
	metrics    SignalMetrics
}

// Option configures a Service instance.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithReputation sets the suspicious-IP checker.
func WithReputation(r ReputationChecker) Option {
	return func(s *Service) {
		s.reputation = r
	}
}

// WithTracer sets the tracer. Defaults to a no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithMetrics sets the signal metrics recorder.
func WithMetrics(m SignalMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the checkout service.
//
// intents may be nil when the processor credential is unconfigured; in that
// case every submission fails with a configuration error so the
// misconfiguration is visible per-request, matching the deployment model of
// one isolated handler per invocation.
func New(admission Admitter, intents IntentCreator, opts ...Option) (*Service, error) {
	if admission == nil {
		return nil, errors.New("admission service is required")
	}

	svc := &Service{
		admission: admission,
		intents:   intents,
		tracer:    tracer.NewNoop(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// CreateIntent runs the full pipeline for one submission.
// clientIP is server-derived, never client-supplied. The request is prepared
// (sanitize, normalize, validate) before any admission check runs; the email
// limit runs before the IP limit; the processor is only called once admitted.
func (s *Service) CreateIntent(ctx context.Context, req *models.CreateIntentRequest, clientIP string) (resp *models.IntentResponse, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCreateIntent,
		tracer.String(tracer.AttrClientIP, clientIP),
	)
	defer func() { span.End(err) }()

	if s.intents == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "決済システムの設定に問題があります。管理者にお問い合わせください。")
	}

	// Observability signal only; the block branch was never enabled.
	if s.reputation != nil && s.reputation.IsSuspicious(clientIP) {
		if s.metrics != nil {
			s.metrics.IncrementSuspiciousIP()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "suspicious IP detected",
				"ip", clientIP,
				"request_id", requestcontext.RequestID(ctx),
				"event", "suspicious_ip_observed",
				"log_type", "audit",
			)
		}
	}

	if err = httputil.PrepareRequest(req); err != nil {
		return nil, err
	}
	span.SetAttributes(
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(req.Email)),
		tracer.Int64(tracer.AttrAmount, req.Amount),
		tracer.String(tracer.AttrCurrency, req.Currency),
	)

	decision, admitErr := s.admission.Admit(ctx, req.Email, clientIP)
	if admitErr != nil {
		err = dErrors.Wrap(admitErr, dErrors.CodeInternal, "処理中にエラーが発生しました。しばらく時間をおいてから再度お試しください。")
		return nil, err
	}
	span.SetAttributes(tracer.Bool(tracer.AttrAdmitted, decision.Allowed))
	if !decision.Allowed {
		span.SetAttributes(tracer.String(tracer.AttrDenyScope, string(decision.Scope)))
		err = &LimitExceededDenial{Decision: decision}
		return nil, err
	}

	callCtx, callSpan := s.tracer.Start(ctx, tracer.SpanProcessorCall)
	resp, err = s.intents.CreateIntent(callCtx, processor.IntentParams{
		Amount:   req.Amount,
		Currency: req.Currency,
		Email:    req.Email,
		ClientIP: clientIP,
	})
	callSpan.End(err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
