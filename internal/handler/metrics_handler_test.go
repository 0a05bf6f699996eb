package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialdash/internal/domain"
	"socialdash/internal/errors"
	"socialdash/internal/service"
)

func TestMetricsHandler_GrowthDefaultsToThirtyDays(t *testing.T) {
	svc := new(mockMetricsService)
	h := NewMetricsHandler(svc, nil)
	e := newEcho()
	svc.On("GetFollowerGrowth", mock.Anything, ownerID, 30, domain.Platform("")).
		Return([]domain.FollowerGrowthPoint{{Platform: domain.PlatformTwitter, Followers: 10}}, nil)

	c, rec := request(e, http.MethodGet, "/api/metrics/growth", "", user(ownerID))
	require.NoError(t, h.Growth(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.FollowerGrowthPoint](t, rec), 1)
	svc.AssertExpectations(t)
}

func TestMetricsHandler_GrowthWindow(t *testing.T) {
	svc := new(mockMetricsService)
	h := NewMetricsHandler(svc, nil)
	e := newEcho()
	svc.On("GetFollowerGrowth", mock.Anything, ownerID, 14, domain.PlatformTwitter).
		Return(nil, errors.Validation("days must be one of 7, 30, 90 or 365"))

	c, _ := request(e, http.MethodGet, "/api/metrics/growth?days=abc", "", user(ownerID))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, h.Growth(c)))

	c, _ = request(e, http.MethodGet, "/api/metrics/growth?days=14&platform=twitter", "", user(ownerID))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, h.Growth(c)))
	svc.AssertExpectations(t)
}

func TestMetricsHandler_ListParsesDates(t *testing.T) {
	svc := new(mockMetricsService)
	h := NewMetricsHandler(svc, nil)
	e := newEcho()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.On("GetMetricsByUserID", mock.Anything, ownerID, mock.MatchedBy(func(f domain.MetricsFilter) bool {
		return f.Platform == domain.PlatformFacebook &&
			f.StartDate != nil && f.StartDate.Equal(start) &&
			f.EndDate != nil && f.EndDate.Equal(end)
	})).Return([]domain.SocialMetrics{}, nil)

	c, rec := request(e, http.MethodGet,
		"/api/metrics?platform=facebook&startDate=2024-03-01&endDate=2024-03-31T12:00:00Z", "", user(ownerID))
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestMetricsHandler_ListRejectsBadDate(t *testing.T) {
	svc := new(mockMetricsService)
	h := NewMetricsHandler(svc, nil)
	e := newEcho()

	c, _ := request(e, http.MethodGet, "/api/metrics?startDate=yesterday", "", user(ownerID))
	err := h.List(c)

	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, "VALIDATION_ERROR", codeOf(t, err))
	svc.AssertNotCalled(t, "GetMetricsByUserID", mock.Anything, mock.Anything, mock.Anything)
}

func TestMetricsHandler_UpsertForAnotherUser(t *testing.T) {
	svc := new(mockMetricsService)
	h := NewMetricsHandler(svc, nil)
	e := newEcho()
	svc.On("UpsertMetrics", mock.Anything, mock.MatchedBy(func(in service.MetricsInput) bool {
		return in.UserID == ownerID && in.Platform == domain.PlatformInstagram && in.Followers == 900
	})).Return(&domain.SocialMetrics{ID: "m1", UserID: ownerID, Followers: 900}, nil)

	body := `{"platform":"instagram","followers":900}`
	c, rec := request(e, http.MethodPost, "/api/metrics?userId="+ownerID, body, admin())
	require.NoError(t, h.Upsert(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = request(e, http.MethodPost, "/api/metrics?userId="+otherID, body, user(ownerID))
	assert.Equal(t, http.StatusForbidden, statusOf(t, h.Upsert(c)))
	svc.AssertNumberOfCalls(t, "UpsertMetrics", 1)
}

func TestMetricsHandler_AppendDailyOutOfOrder(t *testing.T) {
	svc := new(mockMetricsService)
	h := NewMetricsHandler(svc, nil)
	e := newEcho()
	svc.On("AppendDailySnapshot", mock.Anything, ownerID, domain.PlatformTwitter, mock.Anything).
		Return(nil, errors.Validation("snapshot date must be after the last recorded day"))

	body := `{"platform":"twitter","date":"2024-01-01T00:00:00Z","followers":5}`
	c, _ := request(e, http.MethodPost, "/api/metrics/daily", body, user(ownerID))

	assert.Equal(t, http.StatusBadRequest, statusOf(t, h.AppendDaily(c)))
}

func TestMetricsHandler_UpsertChecksProfileOwner(t *testing.T) {
	svc := new(mockMetricsService)
	profiles := new(mockProfileService)
	h := NewMetricsHandler(svc, profiles)
	e := newEcho()
	const mine, theirs = "6b1f0c2e-3a4d-4e5f-9a8b-7c6d5e4f3a2b", "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
	profiles.On("GetProfile", mock.Anything, mine).Return(&domain.SocialProfile{ID: mine, UserID: ownerID}, nil)
	profiles.On("GetProfile", mock.Anything, theirs).Return(&domain.SocialProfile{ID: theirs, UserID: otherID}, nil)
	svc.On("UpsertMetrics", mock.Anything, mock.MatchedBy(func(in service.MetricsInput) bool {
		return in.ProfileID != nil && *in.ProfileID == mine
	})).Return(&domain.SocialMetrics{ID: "m1", UserID: ownerID}, nil)

	c, rec := request(e, http.MethodPost, "/api/metrics",
		`{"platform":"instagram","profileId":"`+mine+`"}`, user(ownerID))
	require.NoError(t, h.Upsert(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = request(e, http.MethodPost, "/api/metrics",
		`{"platform":"instagram","profileId":"`+theirs+`"}`, user(ownerID))
	assert.Equal(t, http.StatusForbidden, statusOf(t, h.Upsert(c)))
	svc.AssertNumberOfCalls(t, "UpsertMetrics", 1)
}
