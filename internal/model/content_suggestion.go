package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EngagementOutcome records how a published suggestion performed.
type EngagementOutcome struct {
	Likes       int64      `json:"likes"`
	Comments    int64      `json:"comments"`
	Shares      int64      `json:"shares"`
	Impressions int64      `json:"impressions"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ContentSuggestion represents a post idea for a user.
type ContentSuggestion struct {
	ID               uuid.UUID          `gorm:"type:char(36);primaryKey"`
	UserID           uuid.UUID          `gorm:"type:char(36);not null;index"`
	Title            string             `gorm:"size:255;not null"`
	Content          string             `gorm:"type:text;not null"`
	Platform         string             `gorm:"size:20;not null;index"`
	MediaType        string             `gorm:"size:20;not null"`
	Tags             []string           `gorm:"serializer:json;type:text"`
	BestTimeToPost   *time.Time
	AIGeneratedScore int                `gorm:"not null;check:ai_generated_score BETWEEN 0 AND 100"`
	Status           string             `gorm:"size:20;not null;default:'pending';index"`
	Engagement       *EngagementOutcome `gorm:"serializer:json;type:text"`
	Metadata         map[string]string  `gorm:"serializer:json;type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BeforeCreate sets UUID before creating the record.
func (s *ContentSuggestion) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
