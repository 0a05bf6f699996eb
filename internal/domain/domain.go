// Package domain holds the application-level entity shapes exchanged between
// the entity services, the HTTP API and the resilient client.
package domain

import "time"

// Role of a dashboard user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Platform is a social network a profile can be linked to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	// PlatformAll targets every platform. Only valid on content suggestions.
	PlatformAll Platform = "all"
)

// ProfilePlatforms lists the platforms a SocialProfile may use.
var ProfilePlatforms = []Platform{
	PlatformInstagram, PlatformTwitter, PlatformFacebook,
	PlatformLinkedIn, PlatformTikTok, PlatformYouTube,
}

// IsProfilePlatform reports whether p is valid for a profile or metrics record.
func (p Platform) IsProfilePlatform() bool {
	for _, v := range ProfilePlatforms {
		if p == v {
			return true
		}
	}
	return false
}

// IsSuggestionPlatform reports whether p is valid for a content suggestion.
func (p Platform) IsSuggestionPlatform() bool {
	return p == PlatformAll || p.IsProfilePlatform()
}

// MediaType of a content suggestion.
type MediaType string

const (
	MediaText     MediaType = "text"
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaCarousel MediaType = "carousel"
	MediaStory    MediaType = "story"
)

// Valid reports whether m is a known media type.
func (m MediaType) Valid() bool {
	switch m {
	case MediaText, MediaImage, MediaVideo, MediaCarousel, MediaStory:
		return true
	}
	return false
}

// SuggestionStatus is the review state of a content suggestion.
type SuggestionStatus string

const (
	StatusPending   SuggestionStatus = "pending"
	StatusApproved  SuggestionStatus = "approved"
	StatusRejected  SuggestionStatus = "rejected"
	StatusPublished SuggestionStatus = "published"
)

var suggestionTransitions = map[SuggestionStatus][]SuggestionStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusPublished},
}

// Valid reports whether s is a known status.
func (s SuggestionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPublished:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s SuggestionStatus) Terminal() bool {
	return s == StatusPublished || s == StatusRejected
}

// CanTransition reports whether a suggestion may move from s to next.
// Re-writing the current status is allowed and treated as a no-op.
func (s SuggestionStatus) CanTransition(next SuggestionStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range suggestionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LinkedAccount is an external provider account attached to a user.
type LinkedAccount struct {
	Provider          string     `json:"provider"`
	ProviderAccountID string     `json:"providerAccountId"`
	AccessToken       *string    `json:"accessToken,omitempty"`
	RefreshToken      *string    `json:"refreshToken,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
}

// User is a dashboard user. The password hash never appears here.
type User struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Image     *string         `json:"image,omitempty"`
	Role      Role            `json:"role"`
	Accounts  []LinkedAccount `json:"accounts"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SocialProfile is a linked social network account owned by a user.
type SocialProfile struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Platform    Platform          `json:"platform"`
	Username    string            `json:"username"`
	ProfileURL  string            `json:"profileUrl"`
	Connected   bool              `json:"connected"`
	Followers   int64             `json:"followers"`
	LastUpdated time.Time         `json:"lastUpdated"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// DailyMetric is one day of a metrics trend.
type DailyMetric struct {
	Date           time.Time `json:"date"`
	Followers      int64     `json:"followers"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	Shares         int64     `json:"shares"`
	Impressions    int64     `json:"impressions"`
	Reach          int64     `json:"reach"`
	EngagementRate float64   `json:"engagementRate"`
}

// SocialMetrics is the aggregate metrics snapshot for one (user, platform).
type SocialMetrics struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	ProfileID      *string       `json:"profileId,omitempty"`
	Platform       Platform      `json:"platform"`
	Date           time.Time     `json:"date"`
	Followers      int64         `json:"followers"`
	Following      int64         `json:"following"`
	Posts          int64         `json:"posts"`
	Likes          int64         `json:"likes"`
	Comments       int64         `json:"comments"`
	Shares         int64         `json:"shares"`
	Impressions    int64         `json:"impressions"`
	Reach          int64         `json:"reach"`
	EngagementRate float64       `json:"engagementRate"`
	Daily          []DailyMetric `json:"daily,omitempty"`
}

// FollowerGrowthPoint is the projection returned by follower-growth queries.
type FollowerGrowthPoint struct {
	Date      time.Time `json:"date"`
	Followers int64     `json:"followers"`
	Platform  Platform  `json:"platform"`
}

// Engagement is the outcome of a published suggestion.
type Engagement struct {
	Likes       int64      `json:"likes"`
	Comments    int64      `json:"comments"`
	Shares      int64      `json:"shares"`
	Impressions int64      `json:"impressions"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// ContentSuggestion is an AI or user authored post idea.
type ContentSuggestion struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	Platform         Platform          `json:"platform"`
	MediaType        MediaType         `json:"mediaType"`
	Tags             []string          `json:"tags"`
	BestTimeToPost   *time.Time        `json:"bestTimeToPost,omitempty"`
	AIGeneratedScore int               `json:"aiGeneratedScore"`
	Status           SuggestionStatus  `json:"status"`
	Engagement       *Engagement       `json:"engagement,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// MetricsFilter narrows GetMetricsByUserID.
type MetricsFilter struct {
	Platform  Platform
	ProfileID string
	StartDate *time.Time
	EndDate   *time.Time
}

// SuggestionFilter narrows GetSuggestionsByUserID.
type SuggestionFilter struct {
	Status   SuggestionStatus
	Platform Platform
}
