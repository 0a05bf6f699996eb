package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialdash/internal/auth"
	"socialdash/internal/domain"
	"socialdash/internal/errors"
	"socialdash/internal/service"
)

const (
	ownerID = "8f2c1a6e-5b1d-4a7e-9f3e-2d4c6b8a0e11"
	otherID = "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"
)

type structValidator struct {
	v *validator.Validate
}

func (s *structValidator) Validate(i interface{}) error {
	return s.v.Struct(i)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &structValidator{v: validator.New()}
	return e
}

// request builds a context for h as the given subject. An empty userID
// leaves the request unauthenticated.
func request(e *echo.Echo, method, target, body string, subject auth.Identity) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if subject.UserID != "" {
		c.Set(ContextKeyToken, &jwt.Token{Claims: &auth.Claims{
			Identity:         subject,
			RegisteredClaims: jwt.RegisteredClaims{ID: "access-jti"},
		}})
	}
	return c, rec
}

func user(id string) auth.Identity {
	return auth.Identity{UserID: id, Email: "ada@example.com", Role: string(domain.RoleUser)}
}

func admin() auth.Identity {
	return auth.Identity{UserID: otherID, Email: "root@example.com", Role: string(domain.RoleAdmin)}
}

// statusOf returns the HTTP status an echo handler error maps to.
func statusOf(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return httpErr.Code
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	resp, ok := httpErr.Message.(errors.ErrorResponse)
	require.True(t, ok, "unexpected message %T", httpErr.Message)
	return resp.Code
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) GetProfilesByUserID(ctx context.Context, userID string) ([]domain.SocialProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocialProfile), args.Error(1)
}

func (m *mockProfileService) GetUserPlatformProfile(ctx context.Context, userID string, platform domain.Platform) (*domain.SocialProfile, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialProfile), args.Error(1)
}

func (m *mockProfileService) GetProfile(ctx context.Context, id string) (*domain.SocialProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialProfile), args.Error(1)
}

func (m *mockProfileService) AddProfile(ctx context.Context, in service.NewProfile) (*domain.SocialProfile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialProfile), args.Error(1)
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, id string, patch service.ProfilePatch) (*domain.SocialProfile, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialProfile), args.Error(1)
}

func (m *mockProfileService) UpdateFollowers(ctx context.Context, id string, followers int64) (*domain.SocialProfile, error) {
	args := m.Called(ctx, id, followers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialProfile), args.Error(1)
}

func (m *mockProfileService) DeleteProfile(ctx context.Context, id string) (*domain.SocialProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialProfile), args.Error(1)
}

type mockSuggestionService struct {
	mock.Mock
}

func (m *mockSuggestionService) result(args mock.Arguments) (*domain.ContentSuggestion, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentSuggestion), args.Error(1)
}

func (m *mockSuggestionService) GetSuggestionsByUserID(ctx context.Context, userID string, filter domain.SuggestionFilter) ([]domain.ContentSuggestion, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentSuggestion), args.Error(1)
}

func (m *mockSuggestionService) GetSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error) {
	return m.result(m.Called(ctx, id))
}

func (m *mockSuggestionService) AddSuggestion(ctx context.Context, in service.NewSuggestion) (*domain.ContentSuggestion, error) {
	return m.result(m.Called(ctx, in))
}

func (m *mockSuggestionService) UpdateSuggestion(ctx context.Context, id string, patch service.SuggestionPatch) (*domain.ContentSuggestion, error) {
	return m.result(m.Called(ctx, id, patch))
}

func (m *mockSuggestionService) UpdateSuggestionStatus(ctx context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error) {
	return m.result(m.Called(ctx, id, status))
}

func (m *mockSuggestionService) RecordEngagement(ctx context.Context, id string, engagement domain.Engagement) (*domain.ContentSuggestion, error) {
	return m.result(m.Called(ctx, id, engagement))
}

func (m *mockSuggestionService) DeleteSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error) {
	return m.result(m.Called(ctx, id))
}

type mockMetricsService struct {
	mock.Mock
}

func (m *mockMetricsService) GetMetricsByUserID(ctx context.Context, userID string, filter domain.MetricsFilter) ([]domain.SocialMetrics, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocialMetrics), args.Error(1)
}

func (m *mockMetricsService) GetFollowerGrowth(ctx context.Context, userID string, days int, platform domain.Platform) ([]domain.FollowerGrowthPoint, error) {
	args := m.Called(ctx, userID, days, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FollowerGrowthPoint), args.Error(1)
}

func (m *mockMetricsService) UpsertMetrics(ctx context.Context, in service.MetricsInput) (*domain.SocialMetrics, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialMetrics), args.Error(1)
}

func (m *mockMetricsService) AppendDailySnapshot(ctx context.Context, userID string, platform domain.Platform, snap domain.DailyMetric) (*domain.SocialMetrics, error) {
	args := m.Called(ctx, userID, platform, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialMetrics), args.Error(1)
}

func TestTargetUser(t *testing.T) {
	e := newEcho()

	c, _ := request(e, http.MethodGet, "/", "", user(ownerID))
	id, err := targetUser(c)
	require.NoError(t, err)
	require.Equal(t, ownerID, id)

	c, _ = request(e, http.MethodGet, "/?userId="+otherID, "", user(ownerID))
	_, err = targetUser(c)
	require.Equal(t, http.StatusForbidden, statusOf(t, err))

	c, _ = request(e, http.MethodGet, "/?userId="+ownerID, "", admin())
	id, err = targetUser(c)
	require.NoError(t, err)
	require.Equal(t, ownerID, id)

	c, _ = request(e, http.MethodGet, "/", "", auth.Identity{})
	_, err = targetUser(c)
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}
