// Package payments adapts the hosted payment gateway used for credit
// purchases.
package payments

import (
	"context"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// CheckoutRequest describes a single line item hosted checkout. Amount is in
// minor currency units.
type CheckoutRequest struct {
	Name        string
	Description string
	Currency    string
	Amount      int64
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook notification. SessionID and Metadata are set
// for checkout session events.
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	Metadata  map[string]string `json:"metadata"`
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook verifies signature over payload and decodes the event.
	// Verification failures wrap ErrInvalidSignature.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
