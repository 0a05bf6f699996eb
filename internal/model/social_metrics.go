package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailySnapshot is one day of metrics, kept in date order inside SocialMetrics.
type DailySnapshot struct {
	Date           time.Time `json:"date"`
	Followers      int64     `json:"followers"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	Shares         int64     `json:"shares"`
	Impressions    int64     `json:"impressions"`
	Reach          int64     `json:"reach"`
	EngagementRate float64   `json:"engagement_rate"`
}

// SocialMetrics is the aggregate metrics record for one user and platform.
// ProfileID is a loose reference: the profile may be deleted while the
// metrics history remains.
type SocialMetrics struct {
	ID             uuid.UUID       `gorm:"type:char(36);primaryKey"`
	UserID         uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_metrics_user_platform"`
	ProfileID      *uuid.UUID      `gorm:"type:char(36);index"`
	Platform       string          `gorm:"size:20;not null;uniqueIndex:idx_metrics_user_platform"`
	Date           time.Time       `gorm:"not null;index"`
	Followers      int64           `gorm:"not null"`
	Following      int64           `gorm:"not null"`
	Posts          int64           `gorm:"not null"`
	Likes          int64           `gorm:"not null"`
	Comments       int64           `gorm:"not null"`
	Shares         int64           `gorm:"not null"`
	Impressions    int64           `gorm:"not null"`
	Reach          int64           `gorm:"not null"`
	EngagementRate float64         `gorm:"not null"`
	Daily          []DailySnapshot `gorm:"serializer:json;type:longtext"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BeforeCreate sets UUID before creating the record.
func (m *SocialMetrics) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
