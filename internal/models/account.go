package models

import "time"

// Account mirrors an authenticated identity and carries its credit balance.
type Account struct {
	UID         string    `gorm:"type:varchar(128);primaryKey" json:"uid" firestore:"-"`
	Email       string    `gorm:"size:255;index" json:"email,omitempty" firestore:"email"`
	DisplayName string    `gorm:"size:255" json:"displayName,omitempty" firestore:"displayName"`
	Credits     int       `gorm:"not null;default:0" json:"credits" firestore:"credits"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"isAdmin" firestore:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt" firestore:"lastLoginAt"`
}

func (Account) TableName() string {
	return "users"
}

// Credential is a login record owned by the built-in identity provider.
type Credential struct {
	Email        string    `gorm:"size:255;primaryKey" json:"email" firestore:"-"`
	UID          string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"uid" firestore:"uid"`
	PasswordHash string    `gorm:"not null" json:"-" firestore:"passwordHash"`
	DisplayName  string    `gorm:"size:255" json:"displayName,omitempty" firestore:"displayName"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}
