package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LinkedAccount is an external provider account stored inside the user document.
type LinkedAccount struct {
	Provider          string     `json:"provider"`
	ProviderAccountID string     `json:"provider_account_id"`
	AccessToken       *string    `json:"access_token,omitempty"`
	RefreshToken      *string    `json:"refresh_token,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
}

// User represents a dashboard user.
type User struct {
	ID           uuid.UUID       `gorm:"type:char(36);primaryKey"`
	Name         string          `gorm:"size:255;not null"`
	Email        string          `gorm:"uniqueIndex;size:255;not null"` // stored lowercased
	Image        *string         `gorm:"size:1024"`
	PasswordHash string          `gorm:"size:255"` // empty for mock-login users
	Role         string          `gorm:"size:20;not null;default:'user'"`
	Accounts     []LinkedAccount `gorm:"serializer:json;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
