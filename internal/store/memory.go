package store

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
)

// MemoryStore keeps everything in process memory. It backs tests and the
// single-process demo mode; data does not survive a restart.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	nextPostID  int
	seq         int
	posts       map[string]*memPost
	accounts    map[string]*models.Account
	payments    []*models.PaymentSession
	events      map[string]struct{}
	credentials map[string]*models.Credential
}

type memPost struct {
	post models.Post
	seq  int
}

type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock used for post timestamps.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:         time.Now,
		nextPostID:  1,
		posts:       make(map[string]*memPost),
		accounts:    make(map[string]*models.Account),
		events:      make(map[string]struct{}),
		credentials: make(map[string]*models.Credential),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserts posts as given. Posts without an ID get the next numeric one.
func (s *MemoryStore) Seed(posts ...models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range posts {
		if p.ID == "" {
			p.ID = s.takePostID()
		} else if n, err := strconv.Atoi(p.ID); err == nil && n >= s.nextPostID {
			s.nextPostID = n + 1
		}
		s.seq++
		s.posts[p.ID] = &memPost{post: clonePost(p), seq: s.seq}
	}
}

// DemoPosts returns the sample feed used when demo seeding is enabled.
func DemoPosts(now time.Time) []models.Post {
	return []models.Post{
		{
			ID:        "1",
			Content:   "I'm so fed up with this situation at work! The boss only knows how to order around and never recognizes our effort!",
			Type:      models.PostTypeRant,
			Timestamp: now.Add(-2 * time.Minute),
			Likes:     15,
		},
		{
			ID:        "2",
			Content:   "I woke up today with incredible energy! Thank you life for another day!",
			Type:      models.PostTypeHug,
			Timestamp: now.Add(-5 * time.Minute),
			Likes:     8,
		},
		{
			ID:         "3",
			Content:    "This society is rotten! Nobody cares about anything or anyone!",
			Type:       models.PostTypeUnfiltered,
			Timestamp:  now.Add(-10 * time.Minute),
			Likes:      23,
			Reports:    2,
			IsReported: true,
		},
	}
}

func (s *MemoryStore) takePostID() string {
	id := strconv.Itoa(s.nextPostID)
	s.nextPostID++
	return id
}

func clonePost(p models.Post) models.Post {
	if p.UserID != nil {
		uid := *p.UserID
		p.UserID = &uid
	}
	return p
}

func (s *MemoryStore) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.takePostID()
	p.Timestamp = s.now()
	s.seq++
	s.posts[p.ID] = &memPost{post: clonePost(*p), seq: s.seq}
	return nil
}

func (s *MemoryStore) GetPost(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mp, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := clonePost(mp.post)
	return &p, nil
}

func (s *MemoryStore) ListPosts(_ context.Context, opts ListOptions) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*memPost, 0, len(s.posts))
	for _, mp := range s.posts {
		if !opts.IncludeModerated && mp.post.IsModerated {
			continue
		}
		entries = append(entries, mp)
	}
	slices.SortFunc(entries, func(a, b *memPost) int {
		if c := b.post.Timestamp.Compare(a.post.Timestamp); c != 0 {
			return c
		}
		return b.seq - a.seq
	})
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	posts := make([]models.Post, len(entries))
	for i, mp := range entries {
		posts[i] = clonePost(mp.post)
	}
	return posts, nil
}

func (s *MemoryStore) updatePost(id string, fn func(p *models.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mp, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	fn(&mp.post)
	return nil
}

func (s *MemoryStore) IncrementLikes(_ context.Context, id string) error {
	return s.updatePost(id, func(p *models.Post) { p.Likes++ })
}

func (s *MemoryStore) IncrementReports(_ context.Context, id string) error {
	return s.updatePost(id, func(p *models.Post) {
		p.Reports++
		p.IsReported = true
	})
}

func (s *MemoryStore) SetModerated(_ context.Context, id string, hidden bool) error {
	return s.updatePost(id, func(p *models.Post) { p.IsModerated = hidden })
}

func (s *MemoryStore) GetAccount(_ context.Context, uid string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.UID]; ok {
		return ErrAlreadyExists
	}
	cp := *a
	s.accounts[a.UID] = &cp
	return nil
}

func (s *MemoryStore) TouchLogin(_ context.Context, uid string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return ErrNotFound
	}
	a.LastLoginAt = at
	return nil
}

func (s *MemoryStore) SetCredits(_ context.Context, uid string, credits int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		a = &models.Account{UID: uid}
		s.accounts[uid] = a
	}
	a.Credits = credits
	return nil
}

func (s *MemoryStore) IncrementCredits(_ context.Context, uid string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return ErrNotFound
	}
	a.Credits += delta
	return nil
}

func (s *MemoryStore) CreatePayment(_ context.Context, p *models.PaymentSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = "pay_" + strconv.Itoa(len(s.payments)+1)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	cp := *p
	s.payments = append(s.payments, &cp)
	return nil
}

func (s *MemoryStore) ListPaymentsBySession(_ context.Context, stripeSessionID string) ([]models.PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PaymentSession
	for _, p := range s.payments {
		if p.StripeSessionID == stripeSessionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *MemoryStore) CompletePayments(_ context.Context, stripeSessionID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.payments {
		if p.StripeSessionID == stripeSessionID {
			completedAt := at
			p.Status = models.PaymentCompleted
			p.CompletedAt = &completedAt
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) FailPendingPayments(_ context.Context, stripeSessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.payments {
		if p.StripeSessionID == stripeSessionID && p.Status == models.PaymentPending {
			p.Status = models.PaymentFailed
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ClaimEvent(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; ok {
		return false, nil
	}
	s.events[id] = struct{}{}
	return true, nil
}

func (s *MemoryStore) ReleaseEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) CreateCredential(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[c.Email]; ok {
		return ErrAlreadyExists
	}
	cp := *c
	s.credentials[c.Email] = &cp
	return nil
}

func (s *MemoryStore) GetCredential(_ context.Context, email string) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
