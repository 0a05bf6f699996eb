package mockdata

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/service"
)

type memUsers struct {
	service.UserService
	byEmail map[string]*domain.User
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.byEmail[email], nil
}

func (m *memUsers) CreateUser(_ context.Context, in service.NewUser) (*domain.User, error) {
	u := &domain.User{ID: uuid.NewString(), Name: in.Name, Email: in.Email, Role: in.Role}
	m.byEmail[in.Email] = u
	return u, nil
}

type memProfiles struct {
	service.ProfileService
	byPlatform map[domain.Platform]*domain.SocialProfile
}

func (m *memProfiles) AddProfile(_ context.Context, in service.NewProfile) (*domain.SocialProfile, error) {
	if _, ok := m.byPlatform[in.Platform]; ok {
		return nil, fmt.Errorf("%w: profile exists", apperrors.ErrDuplicate)
	}
	p := &domain.SocialProfile{ID: uuid.NewString(), UserID: in.UserID, Platform: in.Platform, Username: in.Username, Followers: in.Followers}
	m.byPlatform[in.Platform] = p
	return p, nil
}

func (m *memProfiles) GetUserPlatformProfile(_ context.Context, _ string, platform domain.Platform) (*domain.SocialProfile, error) {
	return m.byPlatform[platform], nil
}

type memMetrics struct {
	service.MetricsService
	byPlatform map[domain.Platform]*domain.SocialMetrics
	appended   int
}

func (m *memMetrics) UpsertMetrics(_ context.Context, in service.MetricsInput) (*domain.SocialMetrics, error) {
	rec, ok := m.byPlatform[in.Platform]
	if !ok {
		rec = &domain.SocialMetrics{ID: uuid.NewString(), UserID: in.UserID, Platform: in.Platform}
		m.byPlatform[in.Platform] = rec
	}
	rec.ProfileID = in.ProfileID
	rec.Followers = in.Followers
	out := *rec
	return &out, nil
}

func (m *memMetrics) AppendDailySnapshot(_ context.Context, _ string, platform domain.Platform, snap domain.DailyMetric) (*domain.SocialMetrics, error) {
	rec := m.byPlatform[platform]
	rec.Daily = append(rec.Daily, snap)
	m.appended++
	out := *rec
	return &out, nil
}

type memSuggestions struct {
	service.SuggestionService
	byID        map[string]*domain.ContentSuggestion
	transitions []domain.SuggestionStatus
}

func (m *memSuggestions) AddSuggestion(_ context.Context, in service.NewSuggestion) (*domain.ContentSuggestion, error) {
	sg := &domain.ContentSuggestion{ID: uuid.NewString(), UserID: in.UserID, Title: in.Title, Status: domain.StatusPending}
	m.byID[sg.ID] = sg
	return sg, nil
}

func (m *memSuggestions) UpdateSuggestionStatus(_ context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error) {
	sg := m.byID[id]
	if !sg.Status.CanTransition(status) {
		return nil, apperrors.ErrInvalidTransition
	}
	sg.Status = status
	m.transitions = append(m.transitions, status)
	return sg, nil
}

func (m *memSuggestions) RecordEngagement(_ context.Context, id string, e domain.Engagement) (*domain.ContentSuggestion, error) {
	sg := m.byID[id]
	sg.Engagement = &e
	return sg, nil
}

func newMemServices() (Services, *memMetrics, *memSuggestions) {
	metrics := &memMetrics{byPlatform: map[domain.Platform]*domain.SocialMetrics{}}
	suggestions := &memSuggestions{byID: map[string]*domain.ContentSuggestion{}}
	return Services{
		Users:       &memUsers{byEmail: map[string]*domain.User{}},
		Profiles:    &memProfiles{byPlatform: map[domain.Platform]*domain.SocialProfile{}},
		Metrics:     metrics,
		Suggestions: suggestions,
	}, metrics, suggestions
}

func TestSeedDatabase(t *testing.T) {
	svc, metrics, suggestions := newMemServices()
	ds := newTestSession(2).All()

	stored, err := SeedDatabase(context.Background(), svc, ds)

	require.NoError(t, err)
	assert.NotEqual(t, ds.User.ID, stored.User.ID)
	assert.Equal(t, ds.User.Email, stored.User.Email)
	require.Len(t, stored.Profiles, 2)
	for _, p := range stored.Profiles {
		assert.Equal(t, stored.User.ID, p.UserID)
	}
	require.Len(t, stored.Metrics, 2)
	for i, m := range stored.Metrics {
		require.NotNil(t, m.ProfileID)
		assert.Equal(t, stored.Profiles[i].ID, *m.ProfileID)
		assert.Len(t, m.Daily, HistoryDays)
	}
	assert.Equal(t, 2*HistoryDays, metrics.appended)

	require.Len(t, stored.Suggestions, len(ds.Suggestions))
	for i, sg := range stored.Suggestions {
		assert.Equal(t, ds.Suggestions[i].Status, sg.Status)
		if sg.Status == domain.StatusPublished {
			assert.NotNil(t, sg.Engagement)
		}
	}
	assert.Contains(t, suggestions.transitions, domain.StatusPublished)
}

func TestSeedDatabase_IsRepeatable(t *testing.T) {
	svc, metrics, _ := newMemServices()
	ds := newTestSession(2).All()

	first, err := SeedDatabase(context.Background(), svc, ds)
	require.NoError(t, err)
	second, err := SeedDatabase(context.Background(), svc, ds)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.Profiles[0].ID, second.Profiles[0].ID)
	// existing daily history is not appended twice
	assert.Equal(t, 2*HistoryDays, metrics.appended)
}
