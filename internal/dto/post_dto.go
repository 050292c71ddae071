package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
)

type CreatePostRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// PostResponse is the public view of a post. The author id is withheld.
type PostResponse struct {
	ID          string          `json:"id"`
	Content     string          `json:"content"`
	Type        models.PostType `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	Likes       int             `json:"likes"`
	Reports     int             `json:"reports"`
	IsReported  bool            `json:"isReported"`
	IsModerated bool            `json:"isModerated"`
}

func NewPostResponse(p *models.Post) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Content:     p.Content,
		Type:        p.Type,
		Timestamp:   p.Timestamp,
		Likes:       p.Likes,
		Reports:     p.Reports,
		IsReported:  p.IsReported,
		IsModerated: p.IsModerated,
	}
}

func NewPostList(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostResponse(&posts[i]))
	}
	return out
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
