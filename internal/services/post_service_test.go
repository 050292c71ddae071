package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/filter"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
)

var errBroken = errors.New("backend unavailable")

// brokenPosts fails every call.
type brokenPosts struct{}

func (brokenPosts) CreatePost(context.Context, *models.Post) error { return errBroken }
func (brokenPosts) GetPost(context.Context, string) (*models.Post, error) {
	return nil, errBroken
}
func (brokenPosts) ListPosts(context.Context, store.ListOptions) ([]models.Post, error) {
	return nil, errBroken
}
func (brokenPosts) IncrementLikes(context.Context, string) error     { return errBroken }
func (brokenPosts) IncrementReports(context.Context, string) error   { return errBroken }
func (brokenPosts) SetModerated(context.Context, string, bool) error { return errBroken }

func steppingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newPostService(t *testing.T, opts ...PostOption) (*PostService, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore(store.WithMemoryClock(steppingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))))
	return NewPostService(mem, filter.Default(), opts...), mem
}

func TestCreateFiltersContent(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, "Hi john, kill the boss", models.PostTypeRant, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.Content != "Hi ****, **** the boss" {
		t.Errorf("content = %q", post.Content)
	}
	if post.ID == "" || post.Likes != 0 || post.Reports != 0 || post.IsReported || post.IsModerated {
		t.Errorf("new post not zeroed: %+v", post)
	}

	got, ok := svc.GetByID(ctx, post.ID)
	if !ok {
		t.Fatal("GetByID did not find created post")
	}
	if got.Content != post.Content || got.Type != models.PostTypeRant {
		t.Errorf("stored post = %+v", got)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "hello", models.PostType("vent"), nil); !errors.Is(err, ErrInvalidPostType) {
		t.Errorf("invalid type err = %v", err)
	}
	if _, err := svc.Create(ctx, "", models.PostTypeHug, nil); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("empty content err = %v", err)
	}
}

func TestCreateStoreFailure(t *testing.T) {
	svc := NewPostService(brokenPosts{}, filter.Default())
	if _, err := svc.Create(context.Background(), "hello", models.PostTypeRant, nil); !errors.Is(err, ErrCreatePost) {
		t.Errorf("err = %v, want ErrCreatePost", err)
	}
}

func TestListPublic(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < PublicFeedLimit+5; i++ {
		p, err := svc.Create(ctx, fmt.Sprintf("post %d", i), models.PostTypeRant, nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, p.ID)
	}
	newest := ids[len(ids)-1]
	if !svc.Moderate(ctx, newest, true) {
		t.Fatal("Moderate failed")
	}

	posts := svc.ListPublic(ctx)
	if len(posts) != PublicFeedLimit {
		t.Fatalf("len = %d, want %d", len(posts), PublicFeedLimit)
	}
	if posts[0].ID != ids[len(ids)-2] {
		t.Errorf("first post = %s, want %s", posts[0].ID, ids[len(ids)-2])
	}
	for i, p := range posts {
		if p.IsModerated {
			t.Errorf("moderated post %s in public feed", p.ID)
		}
		if i > 0 && p.Timestamp.After(posts[i-1].Timestamp) {
			t.Errorf("feed not newest first at %d", i)
		}
	}

	all := svc.ListAdmin(ctx)
	if len(all) != len(ids) {
		t.Errorf("admin len = %d, want %d", len(all), len(ids))
	}
	if all[0].ID != newest || !all[0].IsModerated {
		t.Errorf("admin first = %+v", all[0])
	}
}

func TestLikeReportModerate(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, "hello", models.PostTypeHug, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if !svc.Like(ctx, post.ID) {
			t.Fatal("Like failed")
		}
	}
	if !svc.Report(ctx, post.ID) {
		t.Fatal("Report failed")
	}

	got, _ := svc.GetByID(ctx, post.ID)
	if got.Likes != 3 || got.Reports != 1 || !got.IsReported {
		t.Errorf("after like/report = %+v", got)
	}

	if !svc.Moderate(ctx, post.ID, true) {
		t.Fatal("Moderate(true) failed")
	}
	if len(svc.ListPublic(ctx)) != 0 {
		t.Error("hidden post still public")
	}
	if !svc.Moderate(ctx, post.ID, false) {
		t.Fatal("Moderate(false) failed")
	}
	got, _ = svc.GetByID(ctx, post.ID)
	if got.IsModerated || !got.IsReported || got.Reports != 1 {
		t.Errorf("after restore = %+v", got)
	}
	if len(svc.ListPublic(ctx)) != 1 {
		t.Error("restored post not public")
	}
}

func TestUnknownPost(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	if _, ok := svc.GetByID(ctx, "404"); ok {
		t.Error("GetByID found unknown post")
	}
	if svc.Like(ctx, "404") {
		t.Error("Like succeeded on unknown post")
	}
	if svc.Report(ctx, "404") {
		t.Error("Report succeeded on unknown post")
	}
	if svc.Moderate(ctx, "404", true) {
		t.Error("Moderate succeeded on unknown post")
	}
}

func TestFailuresCollapse(t *testing.T) {
	svc := NewPostService(brokenPosts{}, filter.Default())
	ctx := context.Background()

	if posts := svc.ListPublic(ctx); posts == nil || len(posts) != 0 {
		t.Errorf("ListPublic = %v, want empty", posts)
	}
	if posts := svc.ListAdmin(ctx); posts == nil || len(posts) != 0 {
		t.Errorf("ListAdmin = %v, want empty", posts)
	}
	if _, ok := svc.GetByID(ctx, "1"); ok {
		t.Error("GetByID ok on broken store")
	}
	if svc.Like(ctx, "1") || svc.Report(ctx, "1") || svc.Moderate(ctx, "1", true) {
		t.Error("mutation reported success on broken store")
	}
	if s := svc.Stats(ctx); s != (Stats{}) {
		t.Errorf("Stats = %+v, want zero", s)
	}
}

func TestStats(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	mem := store.NewMemoryStore()
	mem.Seed(
		models.Post{Content: "a", Type: models.PostTypeRant, Timestamp: now.Add(-time.Hour), Reports: 2, IsReported: true},
		models.Post{Content: "b", Type: models.PostTypeHug, Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		models.Post{Content: "c", Type: models.PostTypeRant, Timestamp: time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC), Reports: 1, IsReported: true, IsModerated: true},
		models.Post{Content: "d", Type: models.PostTypeUnfiltered, Timestamp: now.Add(-48 * time.Hour)},
	)
	svc := NewPostService(mem, filter.Default(), WithPostClock(func() time.Time { return now }))

	got := svc.Stats(context.Background())
	want := Stats{TotalPosts: 4, TotalReports: 3, PostsToday: 2, ReportedPosts: 2}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestCreditSpendOnPost(t *testing.T) {
	mem := store.NewMemoryStore()
	ledger := NewLedgerService(mem, "")
	svc := NewPostService(mem, filter.Default(), WithCreditSpend(ledger))
	ctx := context.Background()

	uid := "user123"
	if !ledger.SetCredits(ctx, uid, 2) {
		t.Fatal("SetCredits failed")
	}

	if _, err := svc.Create(ctx, "mine", models.PostTypeRant, &uid); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := ledger.GetCredits(ctx, uid); got != 1 {
		t.Errorf("credits = %d, want 1", got)
	}

	if _, err := svc.Create(ctx, "anonymous", models.PostTypeRant, nil); err != nil {
		t.Fatalf("anonymous Create: %v", err)
	}
	if got := ledger.GetCredits(ctx, uid); got != 1 {
		t.Errorf("anonymous post charged: credits = %d", got)
	}

	ghost := "ghost"
	if _, err := svc.Create(ctx, "nobody", models.PostTypeRant, &ghost); !errors.Is(err, ErrCreditSpend) {
		t.Errorf("unknown account err = %v, want ErrCreditSpend", err)
	}
}

func TestCreditRefundedWhenPostNotStored(t *testing.T) {
	accounts := store.NewMemoryStore()
	ledger := NewLedgerService(accounts, "")
	svc := NewPostService(brokenPosts{}, filter.Default(), WithCreditSpend(ledger))
	ctx := context.Background()

	uid := "user123"
	if !ledger.SetCredits(ctx, uid, 2) {
		t.Fatal("SetCredits failed")
	}

	if _, err := svc.Create(ctx, "lost", models.PostTypeRant, &uid); !errors.Is(err, ErrCreatePost) {
		t.Fatalf("err = %v, want ErrCreatePost", err)
	}
	if got := ledger.GetCredits(ctx, uid); got != 2 {
		t.Errorf("credits = %d, want 2", got)
	}
}

func TestRandomHugMessage(t *testing.T) {
	for i := 0; i < 20; i++ {
		msg := RandomHugMessage()
		if msg.ID == "" || msg.Message == "" {
			t.Fatalf("empty hug message: %+v", msg)
		}
	}
}
