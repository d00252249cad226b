package models

import (
	"regexp"
	"strings"

	dErrors "paygate/pkg/domain-errors"
)

// MaxAmount is the server-side ceiling in minor currency units. It is
// authoritative regardless of the price the client UI displays.
const MaxAmount = 10_000_000

// DefaultCurrency applies when the request omits the currency field.
const DefaultCurrency = "jpy"

// emailPattern is deliberately permissive: local@domain.tld shaped, no
// attempt at full RFC validation.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreateIntentRequest is the body of POST /api/create-payment-intent.
// Amount is in minor currency units. Name is collected for the checkout form
// but not forwarded to the processor.
type CreateIntentRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// Sanitize trims surrounding whitespace from the free-text fields.
func (r *CreateIntentRequest) Sanitize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.Currency = strings.TrimSpace(r.Currency)
}

// Normalize lowercases the email (it doubles as the rate-limit identity) and
// applies the default currency.
func (r *CreateIntentRequest) Normalize() {
	r.Email = strings.ToLower(r.Email)
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
}

// Validate checks the request against the admission rules. It is a pure
// function of the (sanitized, normalized) input.
func (r *CreateIntentRequest) Validate() error {
	if r.Email == "" || r.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidRequest, "メールアドレスと金額が必要です。")
	}
	if !emailPattern.MatchString(r.Email) {
		return dErrors.New(dErrors.CodeInvalidEmail, "有効なメールアドレスを入力してください。")
	}
	if r.Amount < 0 || r.Amount > MaxAmount {
		return dErrors.New(dErrors.CodeInvalidAmount, "金額が無効です。")
	}
	return nil
}
