package resilient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/localstore"
	"socialdash/internal/service"
)

// Profiles reads and writes the user's social profiles.
type Profiles struct {
	c *Client
}

func (p *Profiles) cache() collection[domain.SocialProfile] {
	return collection[domain.SocialProfile]{
		store: p.c.store,
		key:   localstore.KeyProfiles,
		id:    func(v *domain.SocialProfile) string { return v.ID },
	}
}

// Get returns every profile of the current user.
func (p *Profiles) Get(ctx context.Context) ([]domain.SocialProfile, error) {
	cache := p.cache()
	chain := Chain[[]domain.SocialProfile]{
		Op:     "profiles.get",
		Local:  cache.load,
		Mirror: cache.replace,
	}
	if p.c.remote != nil {
		chain.Remote = p.c.remote.ListProfiles
	}
	if svc := p.c.direct.Profiles; svc != nil {
		chain.Direct = svc.GetProfilesByUserID
	}
	return Run(ctx, p.c.runner, chain)
}

// Add links a new profile for the current user.
func (p *Profiles) Add(ctx context.Context, in service.NewProfile) (*domain.SocialProfile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	cache := p.cache()
	chain := Chain[*domain.SocialProfile]{
		Op: "profiles.add",
		Local: func(ctx context.Context) (*domain.SocialProfile, error) {
			return p.addLocal(ctx, in)
		},
		Mirror: func(ctx context.Context, v *domain.SocialProfile) error {
			return cache.merge(ctx, *v)
		},
	}
	if p.c.remote != nil {
		chain.Remote = func(ctx context.Context) (*domain.SocialProfile, error) {
			return p.c.remote.CreateProfile(ctx, in)
		}
	}
	if svc := p.c.direct.Profiles; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) (*domain.SocialProfile, error) {
			owned := in
			owned.UserID = userID
			return svc.AddProfile(ctx, owned)
		}
	}
	return Run(ctx, p.c.runner, chain)
}

func (p *Profiles) addLocal(ctx context.Context, in service.NewProfile) (*domain.SocialProfile, error) {
	cache := p.cache()
	cached, err := cache.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range cached {
		if existing.Platform == in.Platform {
			return nil, apperrors.ErrDuplicate
		}
	}
	connected := true
	if in.Connected != nil {
		connected = *in.Connected
	}
	profile := domain.SocialProfile{
		ID:          uuid.NewString(),
		UserID:      p.c.cachedUserID(ctx),
		Platform:    in.Platform,
		Username:    strings.TrimSpace(in.Username),
		ProfileURL:  strings.TrimSpace(in.ProfileURL),
		Connected:   connected,
		Followers:   in.Followers,
		LastUpdated: p.c.now(),
		Metadata:    in.Metadata,
	}
	if err := cache.save(ctx, append(cached, profile)); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update changes the mutable fields of a profile.
func (p *Profiles) Update(ctx context.Context, id string, patch service.ProfilePatch) (*domain.SocialProfile, error) {
	if patch.Followers != nil && *patch.Followers < 0 {
		return nil, apperrors.Validation("followers must not be negative")
	}
	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return nil, apperrors.Validation("username must not be empty")
	}
	cache := p.cache()
	chain := Chain[*domain.SocialProfile]{
		Op: "profiles.update",
		Local: func(ctx context.Context) (*domain.SocialProfile, error) {
			return cache.update(ctx, id, func(v *domain.SocialProfile) error {
				applyProfilePatch(v, patch)
				v.LastUpdated = p.c.now()
				return nil
			})
		},
		Mirror: func(ctx context.Context, v *domain.SocialProfile) error {
			return cache.merge(ctx, *v)
		},
	}
	if p.c.remote != nil {
		chain.Remote = func(ctx context.Context) (*domain.SocialProfile, error) {
			return p.c.remote.UpdateProfile(ctx, id, patch)
		}
	}
	if svc := p.c.direct.Profiles; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) (*domain.SocialProfile, error) {
			if err := ownProfile(ctx, svc, id, userID); err != nil {
				return nil, err
			}
			return svc.UpdateProfile(ctx, id, patch)
		}
	}
	return Run(ctx, p.c.runner, chain)
}

// Delete unlinks a profile and returns it.
func (p *Profiles) Delete(ctx context.Context, id string) (*domain.SocialProfile, error) {
	cache := p.cache()
	chain := Chain[*domain.SocialProfile]{
		Op:    "profiles.delete",
		Local: func(ctx context.Context) (*domain.SocialProfile, error) { return cache.delete(ctx, id) },
		Mirror: func(ctx context.Context, v *domain.SocialProfile) error {
			return cache.drop(ctx, v.ID)
		},
	}
	if p.c.remote != nil {
		chain.Remote = func(ctx context.Context) (*domain.SocialProfile, error) {
			return p.c.remote.DeleteProfile(ctx, id)
		}
	}
	if svc := p.c.direct.Profiles; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) (*domain.SocialProfile, error) {
			if err := ownProfile(ctx, svc, id, userID); err != nil {
				return nil, err
			}
			return svc.DeleteProfile(ctx, id)
		}
	}
	return Run(ctx, p.c.runner, chain)
}

// ownProfile fails with ErrForbidden when the stored profile belongs to
// someone other than userID.
func ownProfile(ctx context.Context, svc service.ProfileService, id, userID string) error {
	profile, err := svc.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return apperrors.ErrNotFound
	}
	if profile.UserID != userID {
		return apperrors.ErrForbidden
	}
	return nil
}

func applyProfilePatch(v *domain.SocialProfile, patch service.ProfilePatch) {
	if patch.Username != nil {
		v.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.ProfileURL != nil {
		v.ProfileURL = strings.TrimSpace(*patch.ProfileURL)
	}
	if patch.Connected != nil {
		v.Connected = *patch.Connected
	}
	if patch.Followers != nil {
		v.Followers = *patch.Followers
	}
	if patch.Metadata != nil {
		v.Metadata = patch.Metadata
	}
}
