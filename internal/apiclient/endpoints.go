package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"socialdash/internal/domain"
	"socialdash/internal/service"
)

// MockLogin signs in against a backend running in mock mode and keeps the
// returned access token for later requests.
func (c *Client) MockLogin(ctx context.Context, email, name string) (*service.Session, error) {
	var session service.Session
	in := map[string]string{"email": email, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/mock-login", nil, in, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

// ListProfiles returns the caller's social profiles.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.SocialProfile, error) {
	out := []domain.SocialProfile{}
	if err := c.do(ctx, http.MethodGet, "/api/social-profiles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfile returns one profile.
func (c *Client) GetProfile(ctx context.Context, id string) (*domain.SocialProfile, error) {
	var out domain.SocialProfile
	if err := c.do(ctx, http.MethodGet, "/api/social-profiles/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProfile links a new profile.
func (c *Client) CreateProfile(ctx context.Context, in service.NewProfile) (*domain.SocialProfile, error) {
	var out domain.SocialProfile
	if err := c.do(ctx, http.MethodPost, "/api/social-profiles", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile applies a partial update.
func (c *Client) UpdateProfile(ctx context.Context, id string, patch service.ProfilePatch) (*domain.SocialProfile, error) {
	var out domain.SocialProfile
	if err := c.do(ctx, http.MethodPut, "/api/social-profiles/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProfile unlinks a profile and returns it.
func (c *Client) DeleteProfile(ctx context.Context, id string) (*domain.SocialProfile, error) {
	var out domain.SocialProfile
	if err := c.do(ctx, http.MethodDelete, "/api/social-profiles/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSuggestions returns the caller's content suggestions.
func (c *Client) ListSuggestions(ctx context.Context, filter domain.SuggestionFilter) ([]domain.ContentSuggestion, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Platform != "" {
		q.Set("platform", string(filter.Platform))
	}
	out := []domain.ContentSuggestion{}
	if err := c.do(ctx, http.MethodGet, "/api/content/suggestions", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSuggestion adds a suggestion.
func (c *Client) CreateSuggestion(ctx context.Context, in service.NewSuggestion) (*domain.ContentSuggestion, error) {
	var out domain.ContentSuggestion
	if err := c.do(ctx, http.MethodPost, "/api/content/suggestions", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSuggestionStatus moves a suggestion to status.
func (c *Client) UpdateSuggestionStatus(ctx context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error) {
	var out domain.ContentSuggestion
	in := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/api/content/suggestions/"+url.PathEscape(id)+"/status", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSuggestion removes a suggestion and returns it.
func (c *Client) DeleteSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error) {
	var out domain.ContentSuggestion
	if err := c.do(ctx, http.MethodDelete, "/api/content/suggestions/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMetrics returns metrics records matching filter.
func (c *Client) ListMetrics(ctx context.Context, filter domain.MetricsFilter) ([]domain.SocialMetrics, error) {
	q := url.Values{}
	if filter.Platform != "" {
		q.Set("platform", string(filter.Platform))
	}
	if filter.ProfileID != "" {
		q.Set("profileId", filter.ProfileID)
	}
	if filter.StartDate != nil {
		q.Set("startDate", filter.StartDate.Format(time.RFC3339))
	}
	if filter.EndDate != nil {
		q.Set("endDate", filter.EndDate.Format(time.RFC3339))
	}
	out := []domain.SocialMetrics{}
	if err := c.do(ctx, http.MethodGet, "/api/metrics", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FollowerGrowth returns follower counts over the last days.
func (c *Client) FollowerGrowth(ctx context.Context, days int, platform domain.Platform) ([]domain.FollowerGrowthPoint, error) {
	q := url.Values{"days": {strconv.Itoa(days)}}
	if platform != "" {
		q.Set("platform", string(platform))
	}
	out := []domain.FollowerGrowthPoint{}
	if err := c.do(ctx, http.MethodGet, "/api/metrics/growth", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
