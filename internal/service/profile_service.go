package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/model"
	"socialdash/internal/repository"
)

// ProfileService manages the social profiles linked by users.
type ProfileService interface {
	GetProfilesByUserID(ctx context.Context, userID string) ([]domain.SocialProfile, error)
	GetUserPlatformProfile(ctx context.Context, userID string, platform domain.Platform) (*domain.SocialProfile, error)
	GetProfile(ctx context.Context, id string) (*domain.SocialProfile, error)
	AddProfile(ctx context.Context, in NewProfile) (*domain.SocialProfile, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.SocialProfile, error)
	UpdateFollowers(ctx context.Context, id string, followers int64) (*domain.SocialProfile, error)
	DeleteProfile(ctx context.Context, id string) (*domain.SocialProfile, error)
}

// NewProfile is the input of AddProfile. Connected defaults to true.
type NewProfile struct {
	UserID     string            `json:"userId"`
	Platform   domain.Platform   `json:"platform"`
	Username   string            `json:"username"`
	ProfileURL string            `json:"profileUrl"`
	Connected  *bool             `json:"connected,omitempty"`
	Followers  int64             `json:"followers"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ProfilePatch lists the mutable profile fields. Nil fields are left as is.
type ProfilePatch struct {
	Username   *string           `json:"username,omitempty"`
	ProfileURL *string           `json:"profileUrl,omitempty"`
	Connected  *bool             `json:"connected,omitempty"`
	Followers  *int64            `json:"followers,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Validate checks the fields every profile needs. UserID is left to the
// service because API callers take it from their session.
func (in NewProfile) Validate() error {
	switch {
	case in.Platform == "":
		return apperrors.Validation("platform is required")
	case !in.Platform.IsProfilePlatform():
		return apperrors.Validation("unsupported platform %q", in.Platform)
	case strings.TrimSpace(in.Username) == "":
		return apperrors.Validation("username is required")
	case strings.TrimSpace(in.ProfileURL) == "":
		return apperrors.Validation("profileUrl is required")
	case in.Followers < 0:
		return apperrors.Validation("followers must not be negative")
	}
	return nil
}

type profileService struct {
	store repository.Store[model.SocialProfile]
	now   Clock
}

// NewProfileService builds a ProfileService over store.
func NewProfileService(store repository.Store[model.SocialProfile], now Clock) ProfileService {
	return &profileService{store: store, now: orNow(now)}
}

func (s *profileService) GetProfilesByUserID(ctx context.Context, userID string) ([]domain.SocialProfile, error) {
	uid, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.Find(ctx, repository.Where(repository.Eq("user_id", uid.String())).Order("created_at", false))
	if err != nil {
		return nil, err
	}
	out := make([]domain.SocialProfile, 0, len(docs))
	for i := range docs {
		out = append(out, toProfile(&docs[i]))
	}
	return out, nil
}

func (s *profileService) GetUserPlatformProfile(ctx context.Context, userID string, platform domain.Platform) (*domain.SocialProfile, error) {
	uid, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.FindOne(ctx, repository.Where(
		repository.Eq("user_id", uid.String()),
		repository.Eq("platform", string(platform)),
	))
	if err != nil || doc == nil {
		return nil, err
	}
	p := toProfile(doc)
	return &p, nil
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*domain.SocialProfile, error) {
	doc, err := s.store.FindByID(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	p := toProfile(doc)
	return &p, nil
}

func (s *profileService) AddProfile(ctx context.Context, in NewProfile) (*domain.SocialProfile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.ProfileURL = strings.TrimSpace(in.ProfileURL)
	if in.UserID == "" {
		return nil, apperrors.Validation("userId is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetUserPlatformProfile(ctx, in.UserID, in.Platform)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user already has a %s profile", apperrors.ErrDuplicate, in.Platform)
	}

	connected := true
	if in.Connected != nil {
		connected = *in.Connected
	}
	doc, err := fromProfile(domain.SocialProfile{
		UserID:      in.UserID,
		Platform:    in.Platform,
		Username:    in.Username,
		ProfileURL:  in.ProfileURL,
		Connected:   connected,
		Followers:   in.Followers,
		LastUpdated: s.now(),
		Metadata:    in.Metadata,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return nil, err
	}
	p := toProfile(doc)
	return &p, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.SocialProfile, error) {
	if patch.Followers != nil && *patch.Followers < 0 {
		return nil, apperrors.Validation("followers must not be negative")
	}
	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return nil, apperrors.Validation("username must not be empty")
	}

	// metadata is a serialized column, so it goes through a full save
	if patch.Metadata != nil {
		doc, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, apperrors.ErrNotFound
		}
		applyProfilePatch(doc, patch)
		doc.Metadata = copyMetadata(patch.Metadata)
		doc.LastUpdated = s.now()
		if err := s.store.Save(ctx, doc); err != nil {
			return nil, err
		}
		p := toProfile(doc)
		return &p, nil
	}

	values := map[string]interface{}{"last_updated": s.now()}
	if patch.Username != nil {
		values["username"] = strings.TrimSpace(*patch.Username)
	}
	if patch.ProfileURL != nil {
		values["profile_url"] = strings.TrimSpace(*patch.ProfileURL)
	}
	if patch.Connected != nil {
		values["connected"] = *patch.Connected
	}
	if patch.Followers != nil {
		values["followers"] = *patch.Followers
	}
	doc, err := s.store.UpdateByID(ctx, id, values)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	p := toProfile(doc)
	return &p, nil
}

func (s *profileService) UpdateFollowers(ctx context.Context, id string, followers int64) (*domain.SocialProfile, error) {
	return s.UpdateProfile(ctx, id, ProfilePatch{Followers: &followers})
}

func (s *profileService) DeleteProfile(ctx context.Context, id string) (*domain.SocialProfile, error) {
	doc, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	p := toProfile(doc)
	return &p, nil
}

func applyProfilePatch(doc *model.SocialProfile, patch ProfilePatch) {
	if patch.Username != nil {
		doc.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.ProfileURL != nil {
		doc.ProfileURL = strings.TrimSpace(*patch.ProfileURL)
	}
	if patch.Connected != nil {
		doc.Connected = *patch.Connected
	}
	if patch.Followers != nil {
		doc.Followers = *patch.Followers
	}
}

func toProfile(doc *model.SocialProfile) domain.SocialProfile {
	return domain.SocialProfile{
		ID:          doc.ID.String(),
		UserID:      doc.UserID.String(),
		Platform:    domain.Platform(doc.Platform),
		Username:    doc.Username,
		ProfileURL:  doc.ProfileURL,
		Connected:   doc.Connected,
		Followers:   doc.Followers,
		LastUpdated: doc.LastUpdated,
		Metadata:    copyMetadata(doc.Metadata),
	}
}

func fromProfile(p domain.SocialProfile) (*model.SocialProfile, error) {
	uid, err := parseID("userId", p.UserID)
	if err != nil {
		return nil, err
	}
	doc := &model.SocialProfile{
		UserID:      uid,
		Platform:    string(p.Platform),
		Username:    p.Username,
		ProfileURL:  p.ProfileURL,
		Connected:   p.Connected,
		Followers:   p.Followers,
		LastUpdated: p.LastUpdated,
		Metadata:    copyMetadata(p.Metadata),
	}
	if p.ID != "" {
		if doc.ID, err = uuid.Parse(p.ID); err != nil {
			return nil, fmt.Errorf("%w: id %q", apperrors.ErrInvalidID, p.ID)
		}
	}
	return doc, nil
}
