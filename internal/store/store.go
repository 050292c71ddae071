// Package store defines the storage capabilities RantBox needs and provides
// in-memory, GORM and Firestore implementations of them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// ListOptions narrows a post listing. Limit <= 0 means unbounded.
type ListOptions struct {
	IncludeModerated bool
	Limit            int
}

// PostStore persists posts. Counter updates must be atomic in the backend.
type PostStore interface {
	// CreatePost assigns ID and Timestamp on p before persisting it.
	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error)
	IncrementLikes(ctx context.Context, id string) error
	// IncrementReports bumps the report counter and sets IsReported.
	IncrementReports(ctx context.Context, id string) error
	SetModerated(ctx context.Context, id string, hidden bool) error
}

type AccountStore interface {
	GetAccount(ctx context.Context, uid string) (*models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) error
	TouchLogin(ctx context.Context, uid string, at time.Time) error
	// SetCredits overwrites the balance, creating a bare account if needed.
	SetCredits(ctx context.Context, uid string, credits int) error
	IncrementCredits(ctx context.Context, uid string, delta int) error
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.PaymentSession) error
	ListPaymentsBySession(ctx context.Context, stripeSessionID string) ([]models.PaymentSession, error)
	// CompletePayments marks every session with the gateway id completed.
	CompletePayments(ctx context.Context, stripeSessionID string, at time.Time) (int, error)
	// FailPendingPayments marks pending sessions with the gateway id failed.
	FailPendingPayments(ctx context.Context, stripeSessionID string) (int, error)
}

// EventClaimer records which webhook events have been applied.
type EventClaimer interface {
	// ClaimEvent returns false when id was already claimed.
	ClaimEvent(ctx context.Context, id string) (bool, error)
	ReleaseEvent(ctx context.Context, id string) error
}

type CredentialStore interface {
	// CreateCredential returns ErrAlreadyExists when the email is taken.
	CreateCredential(ctx context.Context, c *models.Credential) error
	GetCredential(ctx context.Context, email string) (*models.Credential, error)
}

// Store is the full capability set a backend provides.
type Store interface {
	PostStore
	AccountStore
	PaymentStore
	EventClaimer
	CredentialStore
	Ping(ctx context.Context) error
	Close() error
}
