package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	dErrors "paygate/pkg/domain-errors"
)

// ErrorResponse is the wire envelope for every non-2xx response.
// Error carries a fixed label from a small closed set; Message carries one of
// the pre-approved localized strings. Upstream detail never appears here.
type ErrorResponse struct {
	Error   string     `json:"error"`
	Message string     `json:"message,omitempty"`
	ResetAt *time.Time `json:"resetAt,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	// The response body may be incomplete, but headers are already sent.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into the fixed status/label
// pairs of the checkout API. Unknown errors collapse to a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
			Error:   DomainCodeToLabel(domainErr.Code),
			Message: domainErr.Message,
		})
		return
	}

	// Fallback for unexpected errors
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: DomainCodeToLabel(dErrors.CodeInternal),
	})
}

// WriteRateLimited writes the 429 envelope with the window expiry so clients
// can compute a human-readable retry delay.
func WriteRateLimited(w http.ResponseWriter, message string, resetAt time.Time) {
	WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Error:   "Too many requests",
		Message: message,
		ResetAt: &resetAt,
	})
}

// WriteMethodNotAllowed writes the 405 envelope for non-POST/OPTIONS methods.
func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error: "Method not allowed",
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidRequest, dErrors.CodeInvalidEmail, dErrors.CodeInvalidAmount, dErrors.CodeUpstreamInvalid:
		return http.StatusBadRequest
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeUpstreamAPI:
		return http.StatusBadGateway
	case dErrors.CodeConfiguration:
		return http.StatusInternalServerError
	case dErrors.CodeUpstreamAuth, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToLabel translates domain error codes to the fixed error labels of
// the JSON envelope. The label set is part of the public API contract.
func DomainCodeToLabel(code dErrors.Code) string {
	switch code {
	case dErrors.CodeInvalidRequest, dErrors.CodeUpstreamInvalid:
		return "Invalid request"
	case dErrors.CodeInvalidEmail:
		return "Invalid email"
	case dErrors.CodeInvalidAmount:
		return "Invalid amount"
	case dErrors.CodeRateLimited:
		return "Too many requests"
	case dErrors.CodeConfiguration:
		return "Server configuration error"
	case dErrors.CodeUpstreamAuth, dErrors.CodeUpstreamAPI, dErrors.CodeInternal:
		return "Internal server error"
	default:
		return "Internal server error"
	}
}
