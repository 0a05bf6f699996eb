package mockdata

import (
	"context"
	"errors"
	"fmt"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/localstore"
	"socialdash/internal/service"
)

// SeedLocal writes ds into the local cache keys that are still empty and
// returns the keys it wrote. Existing values are left untouched.
func SeedLocal(ctx context.Context, store localstore.Store, ds *Dataset) ([]string, error) {
	values := []struct {
		key   string
		value interface{}
	}{
		{localstore.KeyProfiles, ds.Profiles},
		{localstore.KeyMetrics, ds.Metrics},
		{localstore.KeySuggestions, ds.Suggestions},
	}

	var seeded []string
	if _, ok, err := store.GetItem(ctx, localstore.KeyUserID); err != nil {
		return nil, err
	} else if !ok {
		if err := store.SetItem(ctx, localstore.KeyUserID, ds.User.ID); err != nil {
			return nil, err
		}
		seeded = append(seeded, localstore.KeyUserID)
	}
	for _, v := range values {
		_, ok, err := store.GetItem(ctx, v.key)
		if err != nil {
			return seeded, err
		}
		if ok {
			continue
		}
		if err := localstore.SetJSON(ctx, store, v.key, v.value); err != nil {
			return seeded, err
		}
		seeded = append(seeded, v.key)
	}
	return seeded, nil
}

// Services are the entity services SeedDatabase writes through.
type Services struct {
	Users       service.UserService
	Profiles    service.ProfileService
	Metrics     service.MetricsService
	Suggestions service.SuggestionService
}

// SeedDatabase stores ds for the user with ds.User's email, creating the
// user when needed. Profiles and metrics already present for a platform
// are kept and only extended. It returns the dataset as stored, with
// database ids.
func SeedDatabase(ctx context.Context, svc Services, ds *Dataset) (*Dataset, error) {
	user, err := svc.Users.GetUserByEmail(ctx, ds.User.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		user, err = svc.Users.CreateUser(ctx, service.NewUser{
			Name:  ds.User.Name,
			Email: ds.User.Email,
			Role:  ds.User.Role,
		})
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	out := &Dataset{User: *user}

	profileIDs := make(map[string]string, len(ds.Profiles))
	for _, p := range ds.Profiles {
		stored, err := seedProfile(ctx, svc.Profiles, user.ID, p)
		if err != nil {
			return nil, err
		}
		profileIDs[p.ID] = stored.ID
		out.Profiles = append(out.Profiles, *stored)
	}

	for _, m := range ds.Metrics {
		var profileID *string
		if m.ProfileID != nil {
			if id, ok := profileIDs[*m.ProfileID]; ok {
				profileID = &id
			}
		}
		stored, err := seedMetrics(ctx, svc.Metrics, user.ID, profileID, m)
		if err != nil {
			return nil, err
		}
		out.Metrics = append(out.Metrics, *stored)
	}

	for _, sg := range ds.Suggestions {
		stored, err := seedSuggestion(ctx, svc.Suggestions, user.ID, sg)
		if err != nil {
			return nil, err
		}
		out.Suggestions = append(out.Suggestions, *stored)
	}
	return out, nil
}

func seedProfile(ctx context.Context, profiles service.ProfileService, userID string, p domain.SocialProfile) (*domain.SocialProfile, error) {
	connected := p.Connected
	stored, err := profiles.AddProfile(ctx, service.NewProfile{
		UserID:     userID,
		Platform:   p.Platform,
		Username:   p.Username,
		ProfileURL: p.ProfileURL,
		Connected:  &connected,
		Followers:  p.Followers,
		Metadata:   p.Metadata,
	})
	if errors.Is(err, apperrors.ErrDuplicate) {
		stored, err = profiles.GetUserPlatformProfile(ctx, userID, p.Platform)
	}
	if err != nil {
		return nil, fmt.Errorf("seed %s profile: %w", p.Platform, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("seed %s profile: %w", p.Platform, apperrors.ErrNotFound)
	}
	return stored, nil
}

func seedMetrics(ctx context.Context, metrics service.MetricsService, userID string, profileID *string, m domain.SocialMetrics) (*domain.SocialMetrics, error) {
	stored, err := metrics.UpsertMetrics(ctx, service.MetricsInput{
		UserID:      userID,
		ProfileID:   profileID,
		Platform:    m.Platform,
		Date:        m.Date,
		Followers:   m.Followers,
		Following:   m.Following,
		Posts:       m.Posts,
		Likes:       m.Likes,
		Comments:    m.Comments,
		Shares:      m.Shares,
		Impressions: m.Impressions,
		Reach:       m.Reach,
	})
	if err != nil {
		return nil, fmt.Errorf("seed %s metrics: %w", m.Platform, err)
	}
	for _, d := range m.Daily {
		if n := len(stored.Daily); n > 0 && !d.Date.After(stored.Daily[n-1].Date) {
			continue
		}
		stored, err = metrics.AppendDailySnapshot(ctx, userID, m.Platform, d)
		if err != nil {
			return nil, fmt.Errorf("seed %s daily metrics: %w", m.Platform, err)
		}
	}
	return stored, nil
}

// seedSuggestion creates sg as pending and walks it through the status
// machine to its target status.
func seedSuggestion(ctx context.Context, suggestions service.SuggestionService, userID string, sg domain.ContentSuggestion) (*domain.ContentSuggestion, error) {
	stored, err := suggestions.AddSuggestion(ctx, service.NewSuggestion{
		UserID:           userID,
		Title:            sg.Title,
		Content:          sg.Content,
		Platform:         sg.Platform,
		MediaType:        sg.MediaType,
		Tags:             sg.Tags,
		BestTimeToPost:   sg.BestTimeToPost,
		AIGeneratedScore: sg.AIGeneratedScore,
		Metadata:         sg.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("seed suggestion %q: %w", sg.Title, err)
	}

	var path []domain.SuggestionStatus
	switch sg.Status {
	case domain.StatusApproved, domain.StatusRejected:
		path = []domain.SuggestionStatus{sg.Status}
	case domain.StatusPublished:
		path = []domain.SuggestionStatus{domain.StatusApproved, domain.StatusPublished}
	}
	for _, status := range path {
		stored, err = suggestions.UpdateSuggestionStatus(ctx, stored.ID, status)
		if err != nil {
			return nil, fmt.Errorf("seed suggestion %q: %w", sg.Title, err)
		}
	}

	if sg.Status == domain.StatusPublished && sg.Engagement != nil {
		stored, err = suggestions.RecordEngagement(ctx, stored.ID, *sg.Engagement)
		if err != nil {
			return nil, fmt.Errorf("seed suggestion %q: %w", sg.Title, err)
		}
	}
	return stored, nil
}
