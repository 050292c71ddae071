package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentSession records one checkout attempt against the payment gateway.
// The Firestore backend stores it through its own document type.
type PaymentSession struct {
	ID              string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          string         `gorm:"type:varchar(128);not null;index" json:"userId"`
	PackageID       string         `gorm:"size:50;not null" json:"packageId"`
	Amount          int64          `gorm:"not null" json:"amount"`
	Credits         int            `gorm:"not null" json:"credits"`
	Status          PaymentStatus  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	StripeSessionID string         `gorm:"size:255;index" json:"stripeSessionId"`
	Metadata        datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
}

func (PaymentSession) TableName() string {
	return "payments"
}

func (p *PaymentSession) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ProcessedEvent marks a gateway webhook event as already applied.
type ProcessedEvent struct {
	ID        string    `gorm:"size:255;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
