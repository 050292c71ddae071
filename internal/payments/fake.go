package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Fake is an in-process Gateway for tests. Webhook payloads are JSON encoded
// Events and the signature must equal Secret.
type Fake struct {
	Secret string
	// Err, when set, fails CreateCheckoutSession.
	Err error

	mu       sync.Mutex
	Requests []CheckoutRequest
}

func NewFake(secret string) *Fake {
	return &Fake{Secret: secret}
}

func (f *Fake) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Requests = append(f.Requests, req)
	id := fmt.Sprintf("cs_test_%d", len(f.Requests))
	return &CheckoutSession{ID: id, URL: "https://checkout.example.com/pay/" + id}, nil
}

func (f *Fake) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if signature == "" || signature != f.Secret {
		return nil, ErrInvalidSignature
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &ev, nil
}

// Calls returns how many checkout sessions were created.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}
