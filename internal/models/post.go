package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostType string

const (
	PostTypeRant       PostType = "rant"
	PostTypeHug        PostType = "hug"
	PostTypeUnfiltered PostType = "unfiltered"
)

// Valid reports whether t is one of the three post categories.
func (t PostType) Valid() bool {
	switch t {
	case PostTypeRant, PostTypeHug, PostTypeUnfiltered:
		return true
	}
	return false
}

// Post is a single anonymous submission. Posts are hidden by moderation,
// never deleted.
type Post struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id" firestore:"-"`
	Content     string    `gorm:"type:text;not null" json:"content" firestore:"content"`
	Type        PostType  `gorm:"type:varchar(20);not null;index" json:"type" firestore:"type"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp" firestore:"timestamp"`
	Likes       int       `gorm:"not null;default:0" json:"likes" firestore:"likes"`
	Reports     int       `gorm:"not null;default:0" json:"reports" firestore:"reports"`
	IsReported  bool      `gorm:"not null;default:false" json:"isReported" firestore:"isReported"`
	IsModerated bool      `gorm:"not null;default:false;index" json:"isModerated" firestore:"isModerated"`
	UserID      *string   `gorm:"type:varchar(128);index" json:"userId" firestore:"userId"`
}

// BeforeCreate assigns a version 7 id. Those sort by creation order, which
// breaks ties between posts sharing a timestamp.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		p.ID = id.String()
	}
	return nil
}

// HugMessage is a predefined comforting reply shown on hug posts.
type HugMessage struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

var HugMessages = []HugMessage{
	{ID: "1", Message: "Everything will be okay. Take a deep breath and believe in yourself! 🤗"},
	{ID: "2", Message: "You're going through a tough time, but you're stronger than you think! 💪"},
	{ID: "3", Message: "Today might not be your day, but tomorrow is a new opportunity! ✨"},
	{ID: "4", Message: "Remember: even the strongest storms eventually pass! 🌈"},
	{ID: "5", Message: "You are unique and worth so much! Don't let anyone tell you otherwise! ❤️"},
	{ID: "6", Message: "A big virtual hug for you! You deserve all the happiness! 🫂"},
	{ID: "7", Message: "Bad days also help us appreciate the good ones that will come! 🌅"},
	{ID: "8", Message: "It's okay to feel this way. You're human and that's normal! 🌸"},
}
