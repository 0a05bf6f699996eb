package resilient

import (
	"context"
	"time"

	"socialdash/internal/domain"
	"socialdash/internal/localstore"
	"socialdash/internal/service"
)

// Remote is the dashboard backend as seen by the first tier.
// *apiclient.Client implements it.
type Remote interface {
	ListProfiles(ctx context.Context) ([]domain.SocialProfile, error)
	CreateProfile(ctx context.Context, in service.NewProfile) (*domain.SocialProfile, error)
	UpdateProfile(ctx context.Context, id string, patch service.ProfilePatch) (*domain.SocialProfile, error)
	DeleteProfile(ctx context.Context, id string) (*domain.SocialProfile, error)

	ListSuggestions(ctx context.Context, filter domain.SuggestionFilter) ([]domain.ContentSuggestion, error)
	CreateSuggestion(ctx context.Context, in service.NewSuggestion) (*domain.ContentSuggestion, error)
	UpdateSuggestionStatus(ctx context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error)
	DeleteSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error)

	ListMetrics(ctx context.Context, filter domain.MetricsFilter) ([]domain.SocialMetrics, error)
	FollowerGrowth(ctx context.Context, days int, platform domain.Platform) ([]domain.FollowerGrowthPoint, error)
}

// Direct holds the entity services used as the second tier. A nil service
// skips the tier for its entity.
type Direct struct {
	Profiles    service.ProfileService
	Suggestions service.SuggestionService
	Metrics     service.MetricsService
}

// Client is the dashboard's data access point. Every method walks the
// remote, direct and local tiers in that order.
type Client struct {
	runner *Runner
	remote Remote
	direct Direct
	store  localstore.Store
	now    service.Clock

	Profiles    *Profiles
	Suggestions *Suggestions
	Metrics     *Metrics
}

// New builds a Client. remote may be nil when no backend is configured.
func New(remote Remote, direct Direct, store localstore.Store, now service.Clock, opts ...RunnerOption) *Client {
	if now == nil {
		now = time.Now
	}
	c := &Client{
		runner: NewRunner(store, opts...),
		remote: remote,
		direct: direct,
		store:  store,
		now:    now,
	}
	c.Profiles = &Profiles{c: c}
	c.Suggestions = &Suggestions{c: c}
	c.Metrics = &Metrics{c: c}
	return c
}

// cachedUserID is the owner stamped on records created by the local tier.
func (c *Client) cachedUserID(ctx context.Context) string {
	id, _, err := c.store.GetItem(ctx, localstore.KeyUserID)
	if err != nil {
		return ""
	}
	return id
}
