package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SocialProfile represents a social network account linked by a user.
// A user holds at most one profile per platform.
type SocialProfile struct {
	ID          uuid.UUID         `gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID         `gorm:"type:char(36);not null;uniqueIndex:idx_profile_user_platform"`
	Platform    string            `gorm:"size:20;not null;uniqueIndex:idx_profile_user_platform"`
	Username    string            `gorm:"size:255;not null"`
	ProfileURL  string            `gorm:"size:1024;not null"`
	Connected   bool              `gorm:"not null"`
	Followers   int64             `gorm:"not null"`
	LastUpdated time.Time         `gorm:"not null"`
	Metadata    map[string]string `gorm:"serializer:json;type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate sets UUID before creating the record.
func (p *SocialProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
