package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/database"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func backends(t *testing.T) map[string]store.Store {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	gs := store.NewGormStore(db).WithClock((&fakeClock{t: base}).now)
	t.Cleanup(func() { gs.Close() })

	return map[string]store.Store{
		"memory": store.NewMemoryStore(store.WithMemoryClock((&fakeClock{t: base}).now)),
		"gorm":   gs,
	}
}

func TestPostLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			uid := "user-1"

			first := &models.Post{Content: "first", Type: models.PostTypeRant}
			second := &models.Post{Content: "second", Type: models.PostTypeHug, UserID: &uid}
			for _, p := range []*models.Post{first, second} {
				if err := s.CreatePost(ctx, p); err != nil {
					t.Fatalf("CreatePost: %v", err)
				}
				if p.ID == "" || p.Timestamp.IsZero() {
					t.Fatalf("CreatePost did not assign id/timestamp: %+v", p)
				}
			}

			got, err := s.GetPost(ctx, second.ID)
			if err != nil {
				t.Fatalf("GetPost: %v", err)
			}
			if got.Content != "second" || got.UserID == nil || *got.UserID != uid {
				t.Errorf("GetPost = %+v", got)
			}

			if _, err := s.GetPost(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("GetPost(missing) err = %v, want ErrNotFound", err)
			}

			for i := 0; i < 2; i++ {
				if err := s.IncrementLikes(ctx, first.ID); err != nil {
					t.Fatalf("IncrementLikes: %v", err)
				}
			}
			if err := s.IncrementReports(ctx, first.ID); err != nil {
				t.Fatalf("IncrementReports: %v", err)
			}
			if err := s.IncrementLikes(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("IncrementLikes(missing) err = %v", err)
			}

			got, _ = s.GetPost(ctx, first.ID)
			if got.Likes != 2 || got.Reports != 1 || !got.IsReported {
				t.Errorf("counters = likes %d reports %d reported %v", got.Likes, got.Reports, got.IsReported)
			}

			if err := s.SetModerated(ctx, first.ID, true); err != nil {
				t.Fatalf("SetModerated: %v", err)
			}

			public, err := s.ListPosts(ctx, store.ListOptions{Limit: 50})
			if err != nil {
				t.Fatalf("ListPosts: %v", err)
			}
			if len(public) != 1 || public[0].ID != second.ID {
				t.Errorf("public listing = %+v", public)
			}

			all, err := s.ListPosts(ctx, store.ListOptions{IncludeModerated: true})
			if err != nil {
				t.Fatalf("ListPosts admin: %v", err)
			}
			if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
				t.Errorf("admin listing order wrong: %+v", all)
			}

			limited, _ := s.ListPosts(ctx, store.ListOptions{IncludeModerated: true, Limit: 1})
			if len(limited) != 1 {
				t.Errorf("limit ignored: %d posts", len(limited))
			}
		})
	}
}

func TestListPostsSameTimestamp(t *testing.T) {
	instant := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	frozen := func() time.Time { return instant }

	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	gs := store.NewGormStore(db).WithClock(frozen)
	t.Cleanup(func() { gs.Close() })

	for name, s := range map[string]store.Store{
		"memory": store.NewMemoryStore(store.WithMemoryClock(frozen)),
		"gorm":   gs,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var ids []string
			for _, content := range []string{"a", "b", "c", "d"} {
				p := &models.Post{Content: content, Type: models.PostTypeRant}
				if err := s.CreatePost(ctx, p); err != nil {
					t.Fatalf("CreatePost: %v", err)
				}
				ids = append(ids, p.ID)
			}

			for round := 0; round < 3; round++ {
				posts, err := s.ListPosts(ctx, store.ListOptions{})
				if err != nil {
					t.Fatalf("ListPosts: %v", err)
				}
				if len(posts) != len(ids) {
					t.Fatalf("len = %d, want %d", len(posts), len(ids))
				}
				for i, p := range posts {
					if want := ids[len(ids)-1-i]; p.ID != want {
						t.Fatalf("round %d: posts[%d] = %s (%s), want %s", round, i, p.ID, p.Content, want)
					}
				}
			}
		})
	}
}

func TestAccounts(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

			a := &models.Account{UID: "u1", Email: "a@example.com", CreatedAt: now, LastLoginAt: now}
			if err := s.CreateAccount(ctx, a); err != nil {
				t.Fatalf("CreateAccount: %v", err)
			}
			if err := s.CreateAccount(ctx, a); !errors.Is(err, store.ErrAlreadyExists) {
				t.Errorf("duplicate CreateAccount err = %v", err)
			}

			later := now.Add(time.Hour)
			if err := s.TouchLogin(ctx, "u1", later); err != nil {
				t.Fatalf("TouchLogin: %v", err)
			}
			if err := s.IncrementCredits(ctx, "u1", 12); err != nil {
				t.Fatalf("IncrementCredits: %v", err)
			}
			if err := s.IncrementCredits(ctx, "u1", -13); err != nil {
				t.Fatalf("IncrementCredits: %v", err)
			}

			got, err := s.GetAccount(ctx, "u1")
			if err != nil {
				t.Fatalf("GetAccount: %v", err)
			}
			if got.Credits != -1 {
				t.Errorf("credits = %d, want -1", got.Credits)
			}
			if !got.LastLoginAt.Equal(later) {
				t.Errorf("lastLoginAt = %v, want %v", got.LastLoginAt, later)
			}

			if err := s.SetCredits(ctx, "u1", 7); err != nil {
				t.Fatalf("SetCredits: %v", err)
			}
			if err := s.SetCredits(ctx, "u2", 3); err != nil {
				t.Fatalf("SetCredits new: %v", err)
			}
			got, _ = s.GetAccount(ctx, "u1")
			if got.Credits != 7 || got.Email != "a@example.com" {
				t.Errorf("after SetCredits = %+v", got)
			}
			got, err = s.GetAccount(ctx, "u2")
			if err != nil || got.Credits != 3 {
				t.Errorf("upserted account = %+v, err %v", got, err)
			}

			if err := s.IncrementCredits(ctx, "nobody", 1); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("IncrementCredits(nobody) err = %v", err)
			}
		})
	}
}

func TestPaymentsAndEvents(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, sid := range []string{"cs_1", "cs_1", "cs_2"} {
				p := &models.PaymentSession{
					UserID: "u1", PackageID: "popular", Amount: 800, Credits: 12,
					Status: models.PaymentPending, StripeSessionID: sid,
				}
				if err := s.CreatePayment(ctx, p); err != nil {
					t.Fatalf("CreatePayment: %v", err)
				}
			}

			n, err := s.CompletePayments(ctx, "cs_1", time.Now())
			if err != nil || n != 2 {
				t.Fatalf("CompletePayments = %d, %v", n, err)
			}
			payments, _ := s.ListPaymentsBySession(ctx, "cs_1")
			for _, p := range payments {
				if p.Status != models.PaymentCompleted || p.CompletedAt == nil {
					t.Errorf("payment not completed: %+v", p)
				}
			}

			if n, _ := s.FailPendingPayments(ctx, "cs_1"); n != 0 {
				t.Errorf("FailPendingPayments touched completed sessions: %d", n)
			}
			if n, _ := s.FailPendingPayments(ctx, "cs_2"); n != 1 {
				t.Errorf("FailPendingPayments(cs_2) = %d", n)
			}

			ok, err := s.ClaimEvent(ctx, "evt_1")
			if err != nil || !ok {
				t.Fatalf("first ClaimEvent = %v, %v", ok, err)
			}
			if ok, _ := s.ClaimEvent(ctx, "evt_1"); ok {
				t.Error("second ClaimEvent succeeded")
			}
			if err := s.ReleaseEvent(ctx, "evt_1"); err != nil {
				t.Fatalf("ReleaseEvent: %v", err)
			}
			if ok, _ := s.ClaimEvent(ctx, "evt_1"); !ok {
				t.Error("ClaimEvent after release failed")
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &models.Credential{Email: "a@example.com", UID: "u1", PasswordHash: "x"}
			if err := s.CreateCredential(ctx, c); err != nil {
				t.Fatalf("CreateCredential: %v", err)
			}
			dup := &models.Credential{Email: "a@example.com", UID: "u2", PasswordHash: "y"}
			if err := s.CreateCredential(ctx, dup); !errors.Is(err, store.ErrAlreadyExists) {
				t.Errorf("duplicate err = %v", err)
			}
			got, err := s.GetCredential(ctx, "a@example.com")
			if err != nil || got.UID != "u1" {
				t.Errorf("GetCredential = %+v, %v", got, err)
			}
			if _, err := s.GetCredential(ctx, "b@example.com"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("missing credential err = %v", err)
			}
		})
	}
}

func TestMemorySeed(t *testing.T) {
	s := store.NewMemoryStore()
	now := time.Now()
	s.Seed(store.DemoPosts(now)...)

	posts, _ := s.ListPosts(context.Background(), store.ListOptions{IncludeModerated: true})
	if len(posts) != 3 || posts[0].ID != "1" {
		t.Fatalf("seeded posts = %+v", posts)
	}

	p := &models.Post{Content: "new", Type: models.PostTypeRant}
	if err := s.CreatePost(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if p.ID != "4" {
		t.Errorf("next id = %q, want 4", p.ID)
	}
}
