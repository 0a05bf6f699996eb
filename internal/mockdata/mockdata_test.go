package mockdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdash/internal/domain"
	"socialdash/internal/localstore"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newTestSession(profiles int) *Session {
	return NewSession(Options{
		UserName:  "Ada Lovelace",
		UserEmail: "Ada@Example.com",
		Profiles:  profiles,
		Seed:      42,
		Now:       func() time.Time { return fixedNow },
	})
}

func TestSession_AllIsMemoized(t *testing.T) {
	s := newTestSession(3)

	first := s.All()
	second := s.All()

	assert.Same(t, first, second)
	assert.Equal(t, "ada@example.com", first.User.Email)
	assert.Len(t, first.Profiles, 3)
	assert.Len(t, first.Metrics, 3)
	assert.Len(t, first.Suggestions, len(catalog))
}

func TestSession_ProfilesAndMetricsAreConsistent(t *testing.T) {
	ds := newTestSession(6).All()
	seen := map[domain.Platform]bool{}

	for i, p := range ds.Profiles {
		assert.Equal(t, ds.User.ID, p.UserID)
		assert.False(t, seen[p.Platform], "platform %s linked twice", p.Platform)
		seen[p.Platform] = true
		assert.Equal(t, "adalovelace", p.Username)

		m := ds.Metrics[i]
		require.NotNil(t, m.ProfileID)
		assert.Equal(t, p.ID, *m.ProfileID)
		assert.Equal(t, p.Platform, m.Platform)
		require.Len(t, m.Daily, HistoryDays)
		assert.Equal(t, p.Followers, m.Daily[HistoryDays-1].Followers)
		assert.Equal(t, m.Followers, p.Followers)
		assert.GreaterOrEqual(t, m.EngagementRate, 0.0)
		assert.Less(t, m.EngagementRate, 0.1)

		for j, d := range m.Daily {
			assert.GreaterOrEqual(t, d.EngagementRate, 0.0)
			assert.Less(t, d.EngagementRate, 0.1)
			assert.False(t, d.Date.After(fixedNow))
			if j > 0 {
				assert.True(t, d.Date.After(m.Daily[j-1].Date))
				assert.GreaterOrEqual(t, d.Followers, m.Daily[j-1].Followers)
			}
		}
	}
}

func TestSession_ProfileCountIsCapped(t *testing.T) {
	ds := newTestSession(50).All()
	assert.Len(t, ds.Profiles, len(domain.ProfilePlatforms))
}

func TestSession_SuggestionsFollowStatusRules(t *testing.T) {
	ds := newTestSession(2).All()

	for _, sg := range ds.Suggestions {
		assert.True(t, sg.Status.Valid())
		assert.True(t, sg.Platform.IsSuggestionPlatform())
		assert.GreaterOrEqual(t, sg.AIGeneratedScore, 0)
		assert.LessOrEqual(t, sg.AIGeneratedScore, 100)
		require.NotNil(t, sg.BestTimeToPost)
		if sg.Status == domain.StatusPublished {
			require.NotNil(t, sg.Engagement)
			assert.NotNil(t, sg.Engagement.PublishedAt)
		} else {
			assert.Nil(t, sg.Engagement)
		}
	}
}

func TestSession_SeedIsReproducible(t *testing.T) {
	a := newTestSession(2).All()
	b := newTestSession(2).All()

	for i := range a.Metrics {
		assert.Equal(t, a.Metrics[i].Followers, b.Metrics[i].Followers)
		assert.Equal(t, a.Metrics[i].Impressions, b.Metrics[i].Impressions)
	}
}

func TestSession_CalendarRecomputes(t *testing.T) {
	s := newTestSession(2)

	june, err := s.Calendar(time.June, 2024)
	require.NoError(t, err)
	for _, e := range june {
		assert.Equal(t, time.June, e.Date.Month())
		assert.Equal(t, 2024, e.Date.Year())
		if e.Date.Before(fixedNow) {
			assert.Equal(t, domain.StatusPublished, e.Status)
		} else {
			assert.Equal(t, domain.StatusApproved, e.Status)
		}
	}

	july, err := s.Calendar(time.July, 2024)
	require.NoError(t, err)
	for _, e := range july {
		assert.Equal(t, time.July, e.Date.Month())
	}

	_, err = s.Calendar(13, 2024)
	assert.Error(t, err)
}

func TestSeedLocal_FillsOnlyEmptyKeys(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemoryStore()
	require.NoError(t, store.SetItem(ctx, localstore.KeyUserID, "existing-user"))
	require.NoError(t, localstore.SetJSON(ctx, store, localstore.KeyProfiles, []domain.SocialProfile{}))
	ds := newTestSession(2).All()

	seeded, err := SeedLocal(ctx, store, ds)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{localstore.KeyMetrics, localstore.KeySuggestions}, seeded)

	id, _, _ := store.GetItem(ctx, localstore.KeyUserID)
	assert.Equal(t, "existing-user", id)

	var profiles []domain.SocialProfile
	_, err = localstore.GetJSON(ctx, store, localstore.KeyProfiles, &profiles)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	var metrics []domain.SocialMetrics
	_, err = localstore.GetJSON(ctx, store, localstore.KeyMetrics, &metrics)
	require.NoError(t, err)
	assert.Len(t, metrics, 2)

	again, err := SeedLocal(ctx, store, ds)
	require.NoError(t, err)
	assert.Empty(t, again)
}
