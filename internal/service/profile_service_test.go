package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/model"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestProfileService_AddThenList(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	ctx := context.Background()
	userID := uuid.New()

	var created *model.SocialProfile
	store.On("FindOne", ctx, hasCond("platform", "twitter")).Return(nil, nil).Once()
	store.On("Create", ctx, mock.AnythingOfType("*model.SocialProfile")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.SocialProfile)
			created.ID = uuid.New()
		}).Return(nil).Once()

	p, err := svc.AddProfile(ctx, NewProfile{
		UserID:     userID.String(),
		Platform:   domain.PlatformTwitter,
		Username:   "x",
		ProfileURL: "https://twitter.com/x",
	})
	require.NoError(t, err)
	assert.True(t, p.Connected)
	assert.Equal(t, int64(0), p.Followers)
	assert.Equal(t, fixedNow, p.LastUpdated)

	store.On("Find", ctx, hasCond("user_id", userID.String())).
		Return([]model.SocialProfile{*created}, nil).Once()

	list, err := svc.GetProfilesByUserID(ctx, userID.String())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PlatformTwitter, list[0].Platform)
	assert.Equal(t, int64(0), list[0].Followers)
	store.AssertExpectations(t)
}

func TestProfileService_AddRejectsSecondProfileForPlatform(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	ctx := context.Background()
	userID := uuid.New()

	store.On("FindOne", ctx, mock.Anything).
		Return(&model.SocialProfile{ID: uuid.New(), UserID: userID, Platform: "instagram"}, nil)

	_, err := svc.AddProfile(ctx, NewProfile{
		UserID:     userID.String(),
		Platform:   domain.PlatformInstagram,
		Username:   "again",
		ProfileURL: "https://instagram.com/again",
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfileService_AddValidation(t *testing.T) {
	svc := NewProfileService(new(mockStore[model.SocialProfile]), fixedClock)
	userID := uuid.NewString()

	tests := []struct {
		name string
		in   NewProfile
	}{
		{"missing user", NewProfile{Platform: "twitter", Username: "x", ProfileURL: "u"}},
		{"missing platform", NewProfile{UserID: userID, Username: "x", ProfileURL: "u"}},
		{"platform all", NewProfile{UserID: userID, Platform: domain.PlatformAll, Username: "x", ProfileURL: "u"}},
		{"missing username", NewProfile{UserID: userID, Platform: "twitter", Username: "  ", ProfileURL: "u"}},
		{"missing url", NewProfile{UserID: userID, Platform: "twitter", Username: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddProfile(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestProfileService_AddHonoursConnectedFalse(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	ctx := context.Background()
	disconnected := false

	store.On("FindOne", ctx, mock.Anything).Return(nil, nil)
	store.On("Create", ctx, mock.MatchedBy(func(p *model.SocialProfile) bool {
		return !p.Connected && p.Followers == 12
	})).Return(nil)

	p, err := svc.AddProfile(ctx, NewProfile{
		UserID: uuid.NewString(), Platform: domain.PlatformYouTube,
		Username: "chan", ProfileURL: "https://youtube.com/@chan",
		Connected: &disconnected, Followers: 12,
	})
	require.NoError(t, err)
	assert.False(t, p.Connected)
}

func TestProfileService_UpdateFollowers(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	ctx := context.Background()
	id := uuid.New()

	store.On("UpdateByID", ctx, id.String(), map[string]interface{}{
		"followers":    int64(500),
		"last_updated": fixedNow,
	}).Return(&model.SocialProfile{ID: id, UserID: uuid.New(), Platform: "tiktok", Followers: 500}, nil)

	p, err := svc.UpdateFollowers(ctx, id.String(), 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.Followers)
}

func TestProfileService_UpdateMetadataSavesWholeDocument(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	ctx := context.Background()
	id := uuid.New()

	store.On("FindByID", ctx, id.String()).
		Return(&model.SocialProfile{ID: id, UserID: uuid.New(), Platform: "facebook", Username: "old"}, nil)
	store.On("Save", ctx, mock.MatchedBy(func(p *model.SocialProfile) bool {
		return p.Metadata["bio"] == "hello" && p.Username == "new"
	})).Return(nil)

	name := "new"
	p, err := svc.UpdateProfile(ctx, id.String(), ProfilePatch{Username: &name, Metadata: map[string]string{"bio": "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Metadata["bio"])
	store.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileService_UpdateAndDeleteMissing(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	ctx := context.Background()
	id := uuid.NewString()

	store.On("UpdateByID", ctx, id, mock.Anything).Return(nil, nil)
	store.On("DeleteByID", ctx, id).Return(nil, nil)

	_, err := svc.UpdateFollowers(ctx, id, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.DeleteProfile(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfileService_GetProfileMissingIsNil(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	id := uuid.NewString()
	store.On("FindByID", mock.Anything, id).Return(nil, nil)

	p, err := svc.GetProfile(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileService_StorageErrorsPropagate(t *testing.T) {
	store := new(mockStore[model.SocialProfile])
	svc := NewProfileService(store, fixedClock)
	storageErr := &apperrors.StorageError{Entity: "socialProfile", Op: "find", Err: apperrors.ErrConnection}
	store.On("Find", mock.Anything, mock.AnythingOfType("repository.Query")).Return(nil, storageErr)

	_, err := svc.GetProfilesByUserID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrConnection)
}

func TestProfileService_InvalidUserID(t *testing.T) {
	svc := NewProfileService(new(mockStore[model.SocialProfile]), fixedClock)
	_, err := svc.GetProfilesByUserID(context.Background(), "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)
}
