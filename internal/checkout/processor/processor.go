// Package processor wraps the Stripe server SDK behind a narrow interface.
//
// It translates the processor's error taxonomy into domain error codes whose
// messages come from a fixed, pre-approved set; the raw upstream error is
// wrapped for server-side logging and never reaches the client.
package processor

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"paygate/internal/checkout/models"
	dErrors "paygate/pkg/domain-errors"
)

// IntentParams carries the validated inputs of one intent creation.
// Email must already be normalized; ClientIP is server-derived.
type IntentParams struct {
	Amount   int64
	Currency string
	Email    string
	ClientIP string
}

// Client creates payment intents against the Stripe API.
type Client struct {
	api *client.API
}

// New creates a processor client with the given secret key.
func New(secretKey string) (*Client, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}, nil
}

// CreateIntent creates a payment intent with automatic 3-D Secure on card
// payment methods, carrying the normalized email and client IP as metadata.
func (c *Client) CreateIntent(ctx context.Context, p IntentParams) (*models.IntentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
			Metadata: map[string]string{
				"email":     p.Email,
				"client_ip": p.ClientIP,
			},
		},
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		PaymentMethodOptions: &stripe.PaymentIntentPaymentMethodOptionsParams{
			Card: &stripe.PaymentIntentPaymentMethodOptionsCardParams{
				RequestThreeDSecure: stripe.String(string(stripe.PaymentIntentPaymentMethodOptionsCardRequestThreeDSecureAutomatic)),
			},
		},
	}

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, MapError(err)
	}

	return &models.IntentResponse{
		ClientSecret: intent.ClientSecret,
		ID:           intent.ID,
	}, nil
}

// MapError collapses the Stripe error taxonomy into domain codes.
// The attached messages are the only texts the client may ever see for
// processor failures; err is preserved in the chain for server-side logs.
func MapError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "処理中にエラーが発生しました。しばらく時間をおいてから再度お試しください。")
	}

	switch stripeErr.Type {
	case stripe.ErrorType("authentication_error"):
		return dErrors.Wrap(err, dErrors.CodeUpstreamAuth, "決済システムの設定に問題があります。管理者にお問い合わせください。")
	case stripe.ErrorTypeAPI:
		return dErrors.Wrap(err, dErrors.CodeUpstreamAPI, "決済システムとの通信に失敗しました。しばらく時間をおいてから再度お試しください。")
	case stripe.ErrorTypeInvalidRequest:
		return dErrors.Wrap(err, dErrors.CodeUpstreamInvalid, "入力内容をご確認ください。")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "処理中にエラーが発生しました。しばらく時間をおいてから再度お試しください。")
	}
}
