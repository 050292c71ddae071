package services

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/filter"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
)

// PublicFeedLimit bounds the public feed read.
const PublicFeedLimit = 50

var (
	ErrCreatePost      = errors.New("failed to create post")
	ErrInvalidPostType = errors.New("invalid post type: must be rant, hug, or unfiltered")
	ErrEmptyContent    = errors.New("content is required")
	ErrCreditSpend     = errors.New("failed to spend credit")
)

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalPosts    int `json:"totalPosts"`
	TotalReports  int `json:"totalReports"`
	PostsToday    int `json:"postsToday"`
	ReportedPosts int `json:"reportedPosts"`
}

// PostService runs the post lifecycle. Store failures are logged and
// reported as false or empty results; callers cannot tell them apart from a
// missing post.
type PostService struct {
	posts  store.PostStore
	filter *filter.Filter
	ledger *LedgerService
	now    func() time.Time
}

type PostOption func(*PostService)

// WithCreditSpend charges one credit per authenticated post.
func WithCreditSpend(ledger *LedgerService) PostOption {
	return func(s *PostService) { s.ledger = ledger }
}

func WithPostClock(now func() time.Time) PostOption {
	return func(s *PostService) { s.now = now }
}

func NewPostService(posts store.PostStore, f *filter.Filter, opts ...PostOption) *PostService {
	s := &PostService{posts: posts, filter: f, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostService) Create(ctx context.Context, content string, postType models.PostType, userID *string) (*models.Post, error) {
	if !postType.Valid() {
		return nil, ErrInvalidPostType
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	charged := s.ledger != nil && userID != nil
	if charged {
		if !s.ledger.SpendCredit(ctx, *userID) {
			return nil, ErrCreditSpend
		}
	}

	post := &models.Post{
		Content: s.filter.Apply(content),
		Type:    postType,
		UserID:  userID,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		slog.Error("error creating post", "error", err)
		if charged {
			s.refund(*userID)
		}
		return nil, ErrCreatePost
	}
	return post, nil
}

// refund returns the credit spent on a post that was never stored. It runs
// detached so a cancelled request still gets its credit back.
func (s *PostService) refund(uid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ledger.AddCredits(ctx, uid, 1); err != nil {
		slog.Error("error refunding post credit", "user_id", uid, "error", err)
	}
}

func (s *PostService) ListPublic(ctx context.Context) []models.Post {
	posts, err := s.posts.ListPosts(ctx, store.ListOptions{Limit: PublicFeedLimit})
	if err != nil {
		slog.Error("error getting posts", "error", err)
		return []models.Post{}
	}
	return posts
}

func (s *PostService) ListAdmin(ctx context.Context) []models.Post {
	posts, err := s.posts.ListPosts(ctx, store.ListOptions{IncludeModerated: true})
	if err != nil {
		slog.Error("error getting admin posts", "error", err)
		return []models.Post{}
	}
	return posts
}

// GetByID returns false when the post does not exist or cannot be read.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, bool) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("error getting post", "post_id", id, "error", err)
		}
		return nil, false
	}
	return post, true
}

// Like counts clicks, not unique likers.
func (s *PostService) Like(ctx context.Context, id string) bool {
	if err := s.posts.IncrementLikes(ctx, id); err != nil {
		slog.Error("error liking post", "post_id", id, "error", err)
		return false
	}
	return true
}

func (s *PostService) Report(ctx context.Context, id string) bool {
	if err := s.posts.IncrementReports(ctx, id); err != nil {
		slog.Error("error reporting post", "post_id", id, "error", err)
		return false
	}
	return true
}

// Moderate hides (true) or restores (false) a post. Report history is kept.
func (s *PostService) Moderate(ctx context.Context, id string, hidden bool) bool {
	if err := s.posts.SetModerated(ctx, id, hidden); err != nil {
		slog.Error("error moderating post", "post_id", id, "hidden", hidden, "error", err)
		return false
	}
	slog.Info("post moderated", "post_id", id, "hidden", hidden)
	return true
}

// Stats rescans every post. "Today" starts at local midnight of the service
// clock.
func (s *PostService) Stats(ctx context.Context) Stats {
	posts, err := s.posts.ListPosts(ctx, store.ListOptions{IncludeModerated: true})
	if err != nil {
		slog.Error("error computing stats", "error", err)
		return Stats{}
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := Stats{TotalPosts: len(posts)}
	for _, p := range posts {
		stats.TotalReports += p.Reports
		if !p.Timestamp.Before(midnight) {
			stats.PostsToday++
		}
		if p.IsReported {
			stats.ReportedPosts++
		}
	}
	return stats
}

func RandomHugMessage() models.HugMessage {
	return models.HugMessages[rand.IntN(len(models.HugMessages))]
}
