package resilient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdash/internal/apiclient"
	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/localstore"
	"socialdash/internal/logging"
	"socialdash/internal/service"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// downRemote answers every call with a server error.
type downRemote struct{}

func (downRemote) err(path string) error {
	return &apiclient.StatusError{Method: "GET", Path: path, StatusCode: 500, Message: "internal server error"}
}

func (d downRemote) ListProfiles(context.Context) ([]domain.SocialProfile, error) {
	return nil, d.err("/api/social-profiles")
}

func (d downRemote) CreateProfile(context.Context, service.NewProfile) (*domain.SocialProfile, error) {
	return nil, d.err("/api/social-profiles")
}

func (d downRemote) UpdateProfile(context.Context, string, service.ProfilePatch) (*domain.SocialProfile, error) {
	return nil, d.err("/api/social-profiles")
}

func (d downRemote) DeleteProfile(context.Context, string) (*domain.SocialProfile, error) {
	return nil, d.err("/api/social-profiles")
}

func (d downRemote) ListSuggestions(context.Context, domain.SuggestionFilter) ([]domain.ContentSuggestion, error) {
	return nil, d.err("/api/content/suggestions")
}

func (d downRemote) CreateSuggestion(context.Context, service.NewSuggestion) (*domain.ContentSuggestion, error) {
	return nil, d.err("/api/content/suggestions")
}

func (d downRemote) UpdateSuggestionStatus(context.Context, string, domain.SuggestionStatus) (*domain.ContentSuggestion, error) {
	return nil, d.err("/api/content/suggestions")
}

func (d downRemote) DeleteSuggestion(context.Context, string) (*domain.ContentSuggestion, error) {
	return nil, d.err("/api/content/suggestions")
}

func (d downRemote) ListMetrics(context.Context, domain.MetricsFilter) ([]domain.SocialMetrics, error) {
	return nil, d.err("/api/metrics")
}

func (d downRemote) FollowerGrowth(context.Context, int, domain.Platform) ([]domain.FollowerGrowthPoint, error) {
	return nil, d.err("/api/metrics/growth")
}

// profileRemote serves a fixed profile list and fails everything else.
type profileRemote struct {
	downRemote
	profiles []domain.SocialProfile
}

func (p profileRemote) ListProfiles(context.Context) ([]domain.SocialProfile, error) {
	return p.profiles, nil
}

const (
	meID    = "0d9c6f3a-5e21-4b8f-a7c4-1e2f3a4b5c6d"
	otherID = "7a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
)

// stubProfiles overrides the profile service calls a test needs.
type stubProfiles struct {
	service.ProfileService
	list    func(ctx context.Context, userID string) ([]domain.SocialProfile, error)
	records map[string]domain.SocialProfile
	deleted []string
}

func (s *stubProfiles) GetProfilesByUserID(ctx context.Context, userID string) ([]domain.SocialProfile, error) {
	return s.list(ctx, userID)
}

func (s *stubProfiles) GetProfile(_ context.Context, id string) (*domain.SocialProfile, error) {
	p, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (s *stubProfiles) DeleteProfile(_ context.Context, id string) (*domain.SocialProfile, error) {
	p, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	delete(s.records, id)
	s.deleted = append(s.deleted, id)
	return &p, nil
}

// stubSuggestions overrides the suggestion service calls a test needs.
type stubSuggestions struct {
	service.SuggestionService
	records map[string]domain.ContentSuggestion
	updated []string
}

func (s *stubSuggestions) GetSuggestion(_ context.Context, id string) (*domain.ContentSuggestion, error) {
	sg, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &sg, nil
}

func (s *stubSuggestions) UpdateSuggestionStatus(_ context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error) {
	sg := s.records[id]
	sg.Status = status
	s.records[id] = sg
	s.updated = append(s.updated, id)
	return &sg, nil
}

func newTestClient(t *testing.T, remote Remote, direct Direct) (*Client, *localstore.MemoryStore) {
	t.Helper()
	store := localstore.NewMemoryStore()
	return New(remote, direct, store, fixedClock, WithLogger(logging.NewDiscard())), store
}

func TestProfiles_RemoteFailureFallsBackToEmptyCache(t *testing.T) {
	c, _ := newTestClient(t, downRemote{}, Direct{})

	profiles, err := c.Profiles.Get(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestProfiles_RemoteResultIsMirrored(t *testing.T) {
	remote := profileRemote{profiles: []domain.SocialProfile{
		{ID: "p1", Platform: domain.PlatformInstagram, Username: "ada"},
	}}
	c, store := newTestClient(t, remote, Direct{})

	_, err := c.Profiles.Get(context.Background())
	require.NoError(t, err)

	var cached []domain.SocialProfile
	ok, err := localstore.GetJSON(context.Background(), store, localstore.KeyProfiles, &cached)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, "p1", cached[0].ID)
}

func TestProfiles_DirectTierUsesCachedUserID(t *testing.T) {
	var asked string
	direct := Direct{Profiles: &stubProfiles{list: func(_ context.Context, userID string) ([]domain.SocialProfile, error) {
		asked = userID
		return []domain.SocialProfile{{ID: "p2", UserID: userID, Platform: domain.PlatformTwitter}}, nil
	}}}
	c, store := newTestClient(t, downRemote{}, direct)
	require.NoError(t, store.SetItem(context.Background(), localstore.KeyUserID, meID))
	// stale cache content must not be served while the database answers
	require.NoError(t, localstore.SetJSON(context.Background(), store, localstore.KeyProfiles, []domain.SocialProfile{{ID: "stale"}}))

	profiles, err := c.Profiles.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, meID, asked)
	require.Len(t, profiles, 1)
	assert.Equal(t, "p2", profiles[0].ID)
}

func TestProfiles_NonUUIDCachedUserFallsBackToLocal(t *testing.T) {
	direct := Direct{Profiles: &stubProfiles{list: func(context.Context, string) ([]domain.SocialProfile, error) {
		t.Fatal("database must not be queried with a malformed user id")
		return nil, nil
	}}}
	c, store := newTestClient(t, downRemote{}, direct)
	ctx := context.Background()
	require.NoError(t, store.SetItem(ctx, localstore.KeyUserID, "u1"))
	require.NoError(t, localstore.SetJSON(ctx, store, localstore.KeyProfiles, []domain.SocialProfile{{ID: "p1", UserID: "u1"}}))

	profiles, err := c.Profiles.Get(ctx)

	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "p1", profiles[0].ID)
}

func TestProfiles_DirectDeleteChecksOwnership(t *testing.T) {
	const victim = "c4d5e6f7-0a1b-4c2d-8e3f-405162738495"
	profiles := &stubProfiles{records: map[string]domain.SocialProfile{
		victim: {ID: victim, UserID: otherID, Platform: domain.PlatformInstagram},
	}}
	c, store := newTestClient(t, downRemote{}, Direct{Profiles: profiles})
	ctx := context.Background()
	require.NoError(t, store.SetItem(ctx, localstore.KeyUserID, meID))

	_, err := c.Profiles.Delete(ctx, victim)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, profiles.deleted)
	assert.Contains(t, profiles.records, victim)

	profiles.records[victim] = domain.SocialProfile{ID: victim, UserID: meID}
	deleted, err := c.Profiles.Delete(ctx, victim)
	require.NoError(t, err)
	assert.Equal(t, victim, deleted.ID)
}

func TestSuggestions_DirectStatusUpdateChecksOwnership(t *testing.T) {
	const foreign = "d1e2f3a4-b5c6-4d7e-8f90-a1b2c3d4e5f6"
	suggestions := &stubSuggestions{records: map[string]domain.ContentSuggestion{
		foreign: {ID: foreign, UserID: otherID, Status: domain.StatusPending},
	}}
	c, store := newTestClient(t, downRemote{}, Direct{Suggestions: suggestions})
	ctx := context.Background()
	require.NoError(t, store.SetItem(ctx, localstore.KeyUserID, meID))

	_, err := c.Suggestions.UpdateStatus(ctx, foreign, domain.StatusApproved)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, suggestions.updated)
	assert.Equal(t, domain.StatusPending, suggestions.records[foreign].Status)
}

// forbiddenRemote rejects every write as belonging to another user.
type forbiddenRemote struct{ downRemote }

func (forbiddenRemote) DeleteProfile(context.Context, string) (*domain.SocialProfile, error) {
	return nil, &apiclient.StatusError{Method: "DELETE", Path: "/api/social-profiles", StatusCode: 403}
}

func TestProfiles_RemoteForbiddenStopsChain(t *testing.T) {
	profiles := &stubProfiles{records: map[string]domain.SocialProfile{}}
	c, store := newTestClient(t, forbiddenRemote{}, Direct{Profiles: profiles})
	ctx := context.Background()
	require.NoError(t, store.SetItem(ctx, localstore.KeyUserID, meID))
	require.NoError(t, localstore.SetJSON(ctx, store, localstore.KeyProfiles, []domain.SocialProfile{{ID: "p1"}}))

	_, err := c.Profiles.Delete(ctx, "p1")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, profiles.deleted)
	var cached []domain.SocialProfile
	_, err = localstore.GetJSON(ctx, store, localstore.KeyProfiles, &cached)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestProfiles_LocalWritesPersist(t *testing.T) {
	c, store := newTestClient(t, downRemote{}, Direct{})
	ctx := context.Background()
	require.NoError(t, store.SetItem(ctx, localstore.KeyUserID, "user-1"))

	added, err := c.Profiles.Add(ctx, service.NewProfile{
		Platform:   domain.PlatformInstagram,
		Username:   " ada ",
		ProfileURL: "https://instagram.com/ada",
		Followers:  10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "user-1", added.UserID)
	assert.Equal(t, "ada", added.Username)
	assert.True(t, added.Connected)
	assert.Equal(t, fixedNow, added.LastUpdated)

	profiles, err := c.Profiles.Get(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, added.ID, profiles[0].ID)

	followers := int64(42)
	updated, err := c.Profiles.Update(ctx, added.ID, service.ProfilePatch{Followers: &followers})
	require.NoError(t, err)
	assert.Equal(t, int64(42), updated.Followers)

	deleted, err := c.Profiles.Delete(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, deleted.ID)

	profiles, err = c.Profiles.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestProfiles_LocalAddRejectsDuplicatePlatform(t *testing.T) {
	c, _ := newTestClient(t, downRemote{}, Direct{})
	in := service.NewProfile{Platform: domain.PlatformTikTok, Username: "ada", ProfileURL: "https://tiktok.com/@ada"}

	_, err := c.Profiles.Add(context.Background(), in)
	require.NoError(t, err)
	_, err = c.Profiles.Add(context.Background(), in)

	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestProfiles_AddValidatesBeforeAnyTier(t *testing.T) {
	c, _ := newTestClient(t, downRemote{}, Direct{})

	_, err := c.Profiles.Add(context.Background(), service.NewProfile{Platform: domain.PlatformAll, Username: "ada", ProfileURL: "x"})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProfiles_UpdateMissingExhaustsTiers(t *testing.T) {
	c, _ := newTestClient(t, downRemote{}, Direct{})
	name := "grace"

	_, err := c.Profiles.Update(context.Background(), "missing", service.ProfilePatch{Username: &name})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, err, apperrors.ErrConnection)
}

func TestSuggestions_LocalReviewFlow(t *testing.T) {
	c, _ := newTestClient(t, downRemote{}, Direct{})
	ctx := context.Background()

	sg, err := c.Suggestions.Add(ctx, service.NewSuggestion{
		Title:            "Behind the scenes",
		Content:          "Show the studio",
		Platform:         domain.PlatformAll,
		MediaType:        domain.MediaVideo,
		Tags:             []string{"#Studio", "studio", "bts"},
		AIGeneratedScore: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, sg.Status)
	assert.Equal(t, []string{"bts", "studio"}, sg.Tags)

	_, err = c.Suggestions.UpdateStatus(ctx, sg.ID, domain.StatusPublished)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = c.Suggestions.UpdateStatus(ctx, sg.ID, domain.StatusApproved)
	require.NoError(t, err)
	published, err := c.Suggestions.UpdateStatus(ctx, sg.ID, domain.StatusPublished)
	require.NoError(t, err)
	require.NotNil(t, published.Engagement)
	assert.Equal(t, fixedNow, *published.Engagement.PublishedAt)

	list, err := c.Suggestions.Get(ctx, domain.SuggestionFilter{Status: domain.StatusPublished})
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = c.Suggestions.Get(ctx, domain.SuggestionFilter{Status: domain.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = c.Suggestions.Delete(ctx, sg.ID)
	require.NoError(t, err)
	_, err = c.Suggestions.Delete(ctx, sg.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSuggestions_RejectsScoreOutOfRange(t *testing.T) {
	c, _ := newTestClient(t, downRemote{}, Direct{})

	_, err := c.Suggestions.Add(context.Background(), service.NewSuggestion{
		Title: "t", Content: "c", Platform: domain.PlatformTwitter, MediaType: domain.MediaText, AIGeneratedScore: 101,
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMetrics_LocalFallback(t *testing.T) {
	c, store := newTestClient(t, downRemote{}, Direct{})
	ctx := context.Background()
	require.NoError(t, localstore.SetJSON(ctx, store, localstore.KeyMetrics, []domain.SocialMetrics{
		{
			ID: "m1", Platform: domain.PlatformInstagram, Date: fixedNow, Followers: 120,
			Daily: []domain.DailyMetric{
				{Date: fixedNow.AddDate(0, 0, -10), Followers: 100},
				{Date: fixedNow.AddDate(0, 0, -3), Followers: 110},
				{Date: fixedNow, Followers: 120},
			},
		},
		{ID: "m2", Platform: domain.PlatformTwitter, Date: fixedNow.AddDate(0, 0, -1), Followers: 50},
	}))

	all, err := c.Metrics.Get(ctx, domain.MetricsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	twitter, err := c.Metrics.Get(ctx, domain.MetricsFilter{Platform: domain.PlatformTwitter})
	require.NoError(t, err)
	require.Len(t, twitter, 1)
	assert.Equal(t, "m2", twitter[0].ID)

	growth, err := c.Metrics.FollowerGrowth(ctx, 7, "")
	require.NoError(t, err)
	require.Len(t, growth, 3)
	assert.Equal(t, int64(110), growth[0].Followers)
	assert.Equal(t, domain.PlatformTwitter, growth[1].Platform)
	assert.Equal(t, int64(120), growth[2].Followers)

	_, err = c.Metrics.FollowerGrowth(ctx, 14, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestClient_WithoutRemote(t *testing.T) {
	c, store := newTestClient(t, nil, Direct{})
	require.NoError(t, localstore.SetJSON(context.Background(), store, localstore.KeyProfiles, []domain.SocialProfile{{ID: "p1"}}))

	profiles, err := c.Profiles.Get(context.Background())

	require.NoError(t, err)
	require.Len(t, profiles, 1)
}
