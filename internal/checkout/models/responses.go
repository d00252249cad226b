package models

// IntentResponse is the successful response of POST /api/create-payment-intent.
// ClientSecret is the processor's client-side confirmation secret; the server
// never returns any other credential.
type IntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	ID           string `json:"id"`
}
