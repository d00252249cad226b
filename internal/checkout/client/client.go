// Package client is the checkout form controller: it gates submissions
// through the advisory lockout ledger, posts to the payment-intent endpoint,
// drives the processor's client-side confirmation step, and records the
// outcome back into the ledger.
//
// It lives in the client trust domain. The server re-validates and re-limits
// everything this package decides.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"paygate/internal/checkout/lockout"
	"paygate/internal/checkout/models"
	"paygate/pkg/platform/httputil"
)

// PaymentMethod selects the active payment tab. Only Card reaches the backend.
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodWallet PaymentMethod = "paypay"
)

// confirmFailureMessage is the one sanitized message shown for any
// confirmation error, so card-validation internals never leak to the page.
const confirmFailureMessage = "カード情報をご確認ください。"

// walletDelay simulates the wallet app round trip.
const defaultWalletDelay = 2 * time.Second

// Confirmer completes the payment against the processor using the client
// secret returned by the backend.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret string) error
}

// Result is the outcome of one submission, surfaced to the form.
type Result struct {
	OK      bool
	Message string
}

// Client orchestrates one checkout form.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	lockout     *lockout.Policy
	confirmer   Confirmer
	logger      *slog.Logger
	method      PaymentMethod
	walletDelay time.Duration
}

// Option configures a Client instance.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithWalletDelay overrides the simulated wallet round-trip delay, for tests.
func WithWalletDelay(d time.Duration) Option {
	return func(cl *Client) {
		cl.walletDelay = d
	}
}

// New creates a checkout client posting to endpoint.
func New(endpoint string, policy *lockout.Policy, confirmer Confirmer, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("lockout policy is required")
	}
	if confirmer == nil {
		return nil, fmt.Errorf("confirmer is required")
	}

	cl := &Client{
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		lockout:     policy,
		confirmer:   confirmer,
		method:      MethodCard,
		walletDelay: defaultWalletDelay,
	}

	for _, opt := range opts {
		opt(cl)
	}

	return cl, nil
}

// SelectMethod switches the active payment method. Exactly one is active.
func (c *Client) SelectMethod(method PaymentMethod) {
	if method == MethodCard || method == MethodWallet {
		c.method = method
	}
}

// Method returns the active payment method.
func (c *Client) Method() PaymentMethod {
	return c.method
}

// Submit runs one checkout submission with the active method.
func (c *Client) Submit(ctx context.Context, name, email string, amount int64) Result {
	if name == "" || email == "" {
		return Result{Message: "お名前とメールアドレスを入力してください。"}
	}

	if c.method == MethodWallet {
		return c.submitWallet(ctx)
	}
	return c.submitCard(ctx, email, amount)
}

// submitCard runs the card flow: lockout gate, intent creation, confirmation.
func (c *Client) submitCard(ctx context.Context, email string, amount int64) Result {
	if decision := c.lockout.CheckLimit(email); !decision.Allowed {
		return Result{Message: decision.Message}
	}

	resp, errMsg := c.createIntent(ctx, email, amount)
	if errMsg != "" {
		c.lockout.RecordAttempt(email, false)
		return Result{Message: errMsg}
	}

	if err := c.confirmer.Confirm(ctx, resp.ClientSecret); err != nil {
		// Raw confirmation errors would act as a card-validation oracle, so
		// only the generic message is ever surfaced.
		if c.logger != nil {
			c.logger.Warn("payment confirmation failed", "error", err, "intent_id", resp.ID)
		}
		c.lockout.RecordAttempt(email, false)
		return Result{Message: confirmFailureMessage}
	}

	c.lockout.RecordAttempt(email, true)
	return Result{OK: true}
}

// submitWallet simulates the alternate wallet flow: a fixed delay, then
// success. It never contacts the backend.
func (c *Client) submitWallet(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Result{Message: confirmFailureMessage}
	case <-time.After(c.walletDelay):
	}
	return Result{OK: true}
}

// createIntent posts to the backend and returns the intent, or a user-facing
// error message. The server's message is preferred; a status-derived fallback
// covers responses without a parsable envelope.
func (c *Client) createIntent(ctx context.Context, email string, amount int64) (*models.IntentResponse, string) {
	body, err := json.Marshal(models.CreateIntentRequest{Email: email, Amount: amount})
	if err != nil {
		return nil, fallbackMessage(0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fallbackMessage(0)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("payment intent request failed", "error", err)
		}
		return nil, fallbackMessage(0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fallbackMessage(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope httputil.ErrorResponse
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
			return nil, envelope.Message
		}
		return nil, fallbackMessage(resp.StatusCode)
	}

	var intent models.IntentResponse
	if err := json.Unmarshal(raw, &intent); err != nil || intent.ClientSecret == "" {
		return nil, fallbackMessage(resp.StatusCode)
	}
	return &intent, ""
}

// fallbackMessage maps a status code to a generic message when the server
// envelope is missing or unreadable.
func fallbackMessage(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "セキュリティのため、しばらく時間をおいてから再度お試しください。"
	case http.StatusBadRequest:
		return "入力内容をご確認ください。"
	default:
		return "処理中にエラーが発生しました。しばらく時間をおいてから再度お試しください。"
	}
}
