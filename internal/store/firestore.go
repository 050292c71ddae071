package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/datatypes"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
)

const (
	postsCollection       = "posts"
	usersCollection       = "users"
	paymentsCollection    = "payments"
	eventsCollection      = "processed_events"
	credentialsCollection = "credentials"
)

// FirestoreStore implements Store on Cloud Firestore. Counters use the
// server-side Increment transform so concurrent likes are never lost.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, now: time.Now}, nil
}

func fsNotFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) CreatePost(ctx context.Context, p *models.Post) error {
	p.Timestamp = s.now()
	ref, _, err := s.client.Collection(postsCollection).Add(ctx, p)
	if err != nil {
		return fmt.Errorf("add post: %w", err)
	}
	p.ID = ref.ID
	return nil
}

func postFromSnapshot(snap *firestore.DocumentSnapshot) (models.Post, error) {
	var p models.Post
	if err := snap.DataTo(&p); err != nil {
		return p, err
	}
	p.ID = snap.Ref.ID
	return p, nil
}

func (s *FirestoreStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	snap, err := s.client.Collection(postsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, fsNotFound(err)
	}
	p, err := postFromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts needs a composite index on (isModerated, timestamp desc) for the
// public listing.
func (s *FirestoreStore) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	query := s.client.Collection(postsCollection).Query
	if !opts.IncludeModerated {
		query = query.Where("isModerated", "==", false)
	}
	query = query.OrderBy("timestamp", firestore.Desc)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(snaps))
	for _, snap := range snaps {
		p, err := postFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *FirestoreStore) updatePost(ctx context.Context, id string, updates []firestore.Update) error {
	_, err := s.client.Collection(postsCollection).Doc(id).Update(ctx, updates)
	return fsNotFound(err)
}

func (s *FirestoreStore) IncrementLikes(ctx context.Context, id string) error {
	return s.updatePost(ctx, id, []firestore.Update{
		{Path: "likes", Value: firestore.Increment(1)},
	})
}

func (s *FirestoreStore) IncrementReports(ctx context.Context, id string) error {
	return s.updatePost(ctx, id, []firestore.Update{
		{Path: "reports", Value: firestore.Increment(1)},
		{Path: "isReported", Value: true},
	})
}

func (s *FirestoreStore) SetModerated(ctx context.Context, id string, hidden bool) error {
	return s.updatePost(ctx, id, []firestore.Update{
		{Path: "isModerated", Value: hidden},
	})
}

func (s *FirestoreStore) GetAccount(ctx context.Context, uid string) (*models.Account, error) {
	snap, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		return nil, fsNotFound(err)
	}
	var a models.Account
	if err := snap.DataTo(&a); err != nil {
		return nil, err
	}
	a.UID = snap.Ref.ID
	return &a, nil
}

func (s *FirestoreStore) CreateAccount(ctx context.Context, a *models.Account) error {
	_, err := s.client.Collection(usersCollection).Doc(a.UID).Create(ctx, a)
	if status.Code(err) == codes.AlreadyExists {
		return ErrAlreadyExists
	}
	return err
}

func (s *FirestoreStore) TouchLogin(ctx context.Context, uid string, at time.Time) error {
	_, err := s.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "lastLoginAt", Value: at},
	})
	return fsNotFound(err)
}

func (s *FirestoreStore) SetCredits(ctx context.Context, uid string, credits int) error {
	_, err := s.client.Collection(usersCollection).Doc(uid).
		Set(ctx, map[string]interface{}{"credits": credits}, firestore.MergeAll)
	return err
}

func (s *FirestoreStore) IncrementCredits(ctx context.Context, uid string, delta int) error {
	_, err := s.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "credits", Value: firestore.Increment(delta)},
	})
	return fsNotFound(err)
}

func (s *FirestoreStore) CreatePayment(ctx context.Context, p *models.PaymentSession) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	doc, err := newPaymentDoc(p)
	if err != nil {
		return err
	}
	ref, _, err := s.client.Collection(paymentsCollection).Add(ctx, doc)
	if err != nil {
		return fmt.Errorf("add payment: %w", err)
	}
	p.ID = ref.ID
	return nil
}

// paymentDoc is the Firestore shape of a payment session. Metadata is kept
// as a map so the console shows it as fields rather than a blob.
type paymentDoc struct {
	UserID          string            `firestore:"userId"`
	PackageID       string            `firestore:"packageId"`
	Amount          int64             `firestore:"amount"`
	Credits         int               `firestore:"credits"`
	Status          string            `firestore:"status"`
	StripeSessionID string            `firestore:"stripeSessionId"`
	Metadata        map[string]string `firestore:"metadata,omitempty"`
	CreatedAt       time.Time         `firestore:"createdAt"`
	CompletedAt     *time.Time        `firestore:"completedAt"`
}

func newPaymentDoc(p *models.PaymentSession) (paymentDoc, error) {
	doc := paymentDoc{
		UserID:          p.UserID,
		PackageID:       p.PackageID,
		Amount:          p.Amount,
		Credits:         p.Credits,
		Status:          string(p.Status),
		StripeSessionID: p.StripeSessionID,
		CreatedAt:       p.CreatedAt,
		CompletedAt:     p.CompletedAt,
	}
	if len(p.Metadata) > 0 {
		if err := json.Unmarshal(p.Metadata, &doc.Metadata); err != nil {
			return doc, fmt.Errorf("decode payment metadata: %w", err)
		}
	}
	return doc, nil
}

func (d paymentDoc) session(id string) (models.PaymentSession, error) {
	p := models.PaymentSession{
		ID:              id,
		UserID:          d.UserID,
		PackageID:       d.PackageID,
		Amount:          d.Amount,
		Credits:         d.Credits,
		Status:          models.PaymentStatus(d.Status),
		StripeSessionID: d.StripeSessionID,
		CreatedAt:       d.CreatedAt,
		CompletedAt:     d.CompletedAt,
	}
	if len(d.Metadata) > 0 {
		raw, err := json.Marshal(d.Metadata)
		if err != nil {
			return p, fmt.Errorf("encode payment metadata: %w", err)
		}
		p.Metadata = datatypes.JSON(raw)
	}
	return p, nil
}

func (s *FirestoreStore) paymentSnapshots(ctx context.Context, stripeSessionID string) ([]*firestore.DocumentSnapshot, error) {
	return s.client.Collection(paymentsCollection).
		Where("stripeSessionId", "==", stripeSessionID).
		Documents(ctx).GetAll()
}

func (s *FirestoreStore) ListPaymentsBySession(ctx context.Context, stripeSessionID string) ([]models.PaymentSession, error) {
	snaps, err := s.paymentSnapshots(ctx, stripeSessionID)
	if err != nil {
		return nil, err
	}
	payments := make([]models.PaymentSession, 0, len(snaps))
	for _, snap := range snaps {
		var doc paymentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		p, err := doc.session(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (s *FirestoreStore) batchUpdatePayments(ctx context.Context, snaps []*firestore.DocumentSnapshot, updates []firestore.Update) (int, error) {
	if len(snaps) == 0 {
		return 0, nil
	}
	batch := s.client.Batch()
	for _, snap := range snaps {
		batch.Update(snap.Ref, updates)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return len(snaps), nil
}

func (s *FirestoreStore) CompletePayments(ctx context.Context, stripeSessionID string, at time.Time) (int, error) {
	snaps, err := s.paymentSnapshots(ctx, stripeSessionID)
	if err != nil {
		return 0, err
	}
	return s.batchUpdatePayments(ctx, snaps, []firestore.Update{
		{Path: "status", Value: string(models.PaymentCompleted)},
		{Path: "completedAt", Value: at},
	})
}

func (s *FirestoreStore) FailPendingPayments(ctx context.Context, stripeSessionID string) (int, error) {
	snaps, err := s.client.Collection(paymentsCollection).
		Where("stripeSessionId", "==", stripeSessionID).
		Where("status", "==", string(models.PaymentPending)).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return s.batchUpdatePayments(ctx, snaps, []firestore.Update{
		{Path: "status", Value: string(models.PaymentFailed)},
	})
}

func (s *FirestoreStore) ClaimEvent(ctx context.Context, id string) (bool, error) {
	_, err := s.client.Collection(eventsCollection).Doc(id).Create(ctx, map[string]interface{}{
		"createdAt": s.now(),
	})
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FirestoreStore) ReleaseEvent(ctx context.Context, id string) error {
	_, err := s.client.Collection(eventsCollection).Doc(id).Delete(ctx)
	return err
}

func (s *FirestoreStore) CreateCredential(ctx context.Context, c *models.Credential) error {
	_, err := s.client.Collection(credentialsCollection).Doc(c.Email).Create(ctx, c)
	if status.Code(err) == codes.AlreadyExists {
		return ErrAlreadyExists
	}
	return err
}

func (s *FirestoreStore) GetCredential(ctx context.Context, email string) (*models.Credential, error) {
	snap, err := s.client.Collection(credentialsCollection).Doc(email).Get(ctx)
	if err != nil {
		return nil, fsNotFound(err)
	}
	var c models.Credential
	if err := snap.DataTo(&c); err != nil {
		return nil, err
	}
	c.Email = snap.Ref.ID
	return &c, nil
}

// Ping reads a single post to check connectivity and credentials.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection(postsCollection).Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
