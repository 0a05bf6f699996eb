package resilient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/localstore"
	"socialdash/internal/service"
)

// Suggestions reads and reviews content suggestions.
type Suggestions struct {
	c *Client
}

func (s *Suggestions) cache() collection[domain.ContentSuggestion] {
	return collection[domain.ContentSuggestion]{
		store: s.c.store,
		key:   localstore.KeySuggestions,
		id:    func(v *domain.ContentSuggestion) string { return v.ID },
	}
}

// Get returns the current user's suggestions matching filter.
func (s *Suggestions) Get(ctx context.Context, filter domain.SuggestionFilter) ([]domain.ContentSuggestion, error) {
	cache := s.cache()
	chain := Chain[[]domain.ContentSuggestion]{
		Op: "suggestions.get",
		Local: func(ctx context.Context) ([]domain.ContentSuggestion, error) {
			cached, err := cache.load(ctx)
			if err != nil {
				return nil, err
			}
			out := []domain.ContentSuggestion{}
			for _, sg := range cached {
				if matchSuggestion(sg, filter) {
					out = append(out, sg)
				}
			}
			return out, nil
		},
		Mirror: func(ctx context.Context, v []domain.ContentSuggestion) error {
			if filter == (domain.SuggestionFilter{}) {
				return cache.replace(ctx, v)
			}
			return cache.merge(ctx, v...)
		},
	}
	if s.c.remote != nil {
		chain.Remote = func(ctx context.Context) ([]domain.ContentSuggestion, error) {
			return s.c.remote.ListSuggestions(ctx, filter)
		}
	}
	if svc := s.c.direct.Suggestions; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) ([]domain.ContentSuggestion, error) {
			return svc.GetSuggestionsByUserID(ctx, userID, filter)
		}
	}
	return Run(ctx, s.c.runner, chain)
}

func matchSuggestion(sg domain.ContentSuggestion, filter domain.SuggestionFilter) bool {
	if filter.Status != "" && sg.Status != filter.Status {
		return false
	}
	if filter.Platform != "" && sg.Platform != filter.Platform {
		return false
	}
	return true
}

// Add stores a new pending suggestion.
func (s *Suggestions) Add(ctx context.Context, in service.NewSuggestion) (*domain.ContentSuggestion, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	cache := s.cache()
	chain := Chain[*domain.ContentSuggestion]{
		Op: "suggestions.add",
		Local: func(ctx context.Context) (*domain.ContentSuggestion, error) {
			now := s.c.now()
			sg := domain.ContentSuggestion{
				ID:               uuid.NewString(),
				UserID:           s.c.cachedUserID(ctx),
				Title:            strings.TrimSpace(in.Title),
				Content:          strings.TrimSpace(in.Content),
				Platform:         in.Platform,
				MediaType:        in.MediaType,
				Tags:             service.NormalizeTags(in.Tags),
				BestTimeToPost:   in.BestTimeToPost,
				AIGeneratedScore: in.AIGeneratedScore,
				Status:           domain.StatusPending,
				Metadata:         in.Metadata,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := cache.merge(ctx, sg); err != nil {
				return nil, err
			}
			return &sg, nil
		},
		Mirror: func(ctx context.Context, v *domain.ContentSuggestion) error {
			return cache.merge(ctx, *v)
		},
	}
	if s.c.remote != nil {
		chain.Remote = func(ctx context.Context) (*domain.ContentSuggestion, error) {
			return s.c.remote.CreateSuggestion(ctx, in)
		}
	}
	if svc := s.c.direct.Suggestions; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) (*domain.ContentSuggestion, error) {
			owned := in
			owned.UserID = userID
			return svc.AddSuggestion(ctx, owned)
		}
	}
	return Run(ctx, s.c.runner, chain)
}

// UpdateStatus moves a suggestion to status.
func (s *Suggestions) UpdateStatus(ctx context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("unknown status %q", status)
	}
	cache := s.cache()
	chain := Chain[*domain.ContentSuggestion]{
		Op: "suggestions.update_status",
		Local: func(ctx context.Context) (*domain.ContentSuggestion, error) {
			return cache.update(ctx, id, func(v *domain.ContentSuggestion) error {
				if v.Status == status {
					return nil
				}
				if !v.Status.CanTransition(status) {
					return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, v.Status, status)
				}
				now := s.c.now()
				v.Status = status
				v.UpdatedAt = now
				if status == domain.StatusPublished {
					if v.Engagement == nil {
						v.Engagement = &domain.Engagement{}
					}
					v.Engagement.PublishedAt = &now
				}
				return nil
			})
		},
		Mirror: func(ctx context.Context, v *domain.ContentSuggestion) error {
			return cache.merge(ctx, *v)
		},
	}
	if s.c.remote != nil {
		chain.Remote = func(ctx context.Context) (*domain.ContentSuggestion, error) {
			return s.c.remote.UpdateSuggestionStatus(ctx, id, status)
		}
	}
	if svc := s.c.direct.Suggestions; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) (*domain.ContentSuggestion, error) {
			if err := ownSuggestion(ctx, svc, id, userID); err != nil {
				return nil, err
			}
			return svc.UpdateSuggestionStatus(ctx, id, status)
		}
	}
	return Run(ctx, s.c.runner, chain)
}

// Delete removes a suggestion and returns it.
func (s *Suggestions) Delete(ctx context.Context, id string) (*domain.ContentSuggestion, error) {
	cache := s.cache()
	chain := Chain[*domain.ContentSuggestion]{
		Op:    "suggestions.delete",
		Local: func(ctx context.Context) (*domain.ContentSuggestion, error) { return cache.delete(ctx, id) },
		Mirror: func(ctx context.Context, v *domain.ContentSuggestion) error {
			return cache.drop(ctx, v.ID)
		},
	}
	if s.c.remote != nil {
		chain.Remote = func(ctx context.Context) (*domain.ContentSuggestion, error) {
			return s.c.remote.DeleteSuggestion(ctx, id)
		}
	}
	if svc := s.c.direct.Suggestions; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) (*domain.ContentSuggestion, error) {
			if err := ownSuggestion(ctx, svc, id, userID); err != nil {
				return nil, err
			}
			return svc.DeleteSuggestion(ctx, id)
		}
	}
	return Run(ctx, s.c.runner, chain)
}

func ownSuggestion(ctx context.Context, svc service.SuggestionService, id, userID string) error {
	sg, err := svc.GetSuggestion(ctx, id)
	if err != nil {
		return err
	}
	if sg == nil {
		return apperrors.ErrNotFound
	}
	if sg.UserID != userID {
		return apperrors.ErrForbidden
	}
	return nil
}
