package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	admissionModels "paygate/internal/admission/models"
	"paygate/internal/checkout/models"
	"paygate/internal/checkout/service"
	"paygate/internal/platform/middleware"
	"paygate/pkg/platform/httputil"
	"paygate/pkg/requestcontext"
)

// maxBodyBytes caps the request body size to prevent DoS via large payloads.
const maxBodyBytes = 64 * 1024

// Service is the checkout pipeline consumed by the HTTP layer.
type Service interface {
	CreateIntent(ctx context.Context, req *models.CreateIntentRequest, clientIP string) (*models.IntentResponse, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/create-payment-intent", h.HandleCreateIntent)
}

// HandleCreateIntent implements POST /api/create-payment-intent.
//
// Input:  { "email": "a@b.co", "amount": 29800, "currency": "jpy" }
// Output: { "clientSecret": "...", "id": "pi_..." }
//
// Validation failures map to 400, admission denials to 429 with a retry-delay
// message, processor failures to 400/500/502 with pre-approved messages. Full
// error detail is logged server-side and never forwarded to the client.
func (h *Handler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, ok := httputil.DecodeJSON[models.CreateIntentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	clientIP := requestcontext.ClientIP(ctx)
	resp, err := h.service.CreateIntent(ctx, req, clientIP)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var denial *service.LimitExceededDenial
	if errors.As(err, &denial) {
		now := requestcontext.Now(ctx)
		httputil.WriteRateLimited(w, retryMessage(denial, now), denial.Decision.Result.ResetAt)
		return
	}

	h.logger.ErrorContext(ctx, "failed to create payment intent",
		"error", err,
		"request_id", requestID,
		"browser", browserFromContext(ctx),
	)
	httputil.WriteError(w, err)
}

// retryMessage builds the client-facing 429 message. The email limit reports
// the minutes until its window expires; the IP limit stays vague so one
// visitor cannot probe another address's window.
func retryMessage(denial *service.LimitExceededDenial, now time.Time) string {
	if denial.Decision.Scope == admissionModels.ScopeEmail {
		return fmt.Sprintf("セキュリティのため、%d分後に再度お試しください。", denial.Decision.RetryMinutes(now))
	}
	return "セキュリティのため、しばらく時間をおいてから再度お試しください。"
}

// browserFromContext derives the browser family for fraud observability in
// error logs. Empty when no User-Agent was sent.
func browserFromContext(ctx context.Context) string {
	return middleware.BrowserFamily(requestcontext.UserAgent(ctx))
}
