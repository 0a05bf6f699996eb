package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"socialdash/internal/domain"
	"socialdash/internal/errors"
	"socialdash/internal/service"
)

// MetricsHandler serves social metrics.
type MetricsHandler struct {
	metrics  service.MetricsService
	profiles service.ProfileService
}

// NewMetricsHandler creates a new metrics handler. profiles resolves the
// profileId references of upserted metrics.
func NewMetricsHandler(metrics service.MetricsService, profiles service.ProfileService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, profiles: profiles}
}

// UpsertMetricsRequest refreshes the aggregate counters of one platform.
type UpsertMetricsRequest struct {
	ProfileID   *string         `json:"profileId" validate:"omitempty,uuid"`
	Platform    domain.Platform `json:"platform" validate:"required"`
	Date        time.Time       `json:"date"`
	Followers   int64           `json:"followers" validate:"gte=0"`
	Following   int64           `json:"following" validate:"gte=0"`
	Posts       int64           `json:"posts" validate:"gte=0"`
	Likes       int64           `json:"likes" validate:"gte=0"`
	Comments    int64           `json:"comments" validate:"gte=0"`
	Shares      int64           `json:"shares" validate:"gte=0"`
	Impressions int64           `json:"impressions" validate:"gte=0"`
	Reach       int64           `json:"reach" validate:"gte=0"`
}

// DailySnapshotRequest appends one day to a platform's history.
type DailySnapshotRequest struct {
	Platform    domain.Platform `json:"platform" validate:"required"`
	Date        time.Time       `json:"date" validate:"required"`
	Followers   int64           `json:"followers" validate:"gte=0"`
	Likes       int64           `json:"likes" validate:"gte=0"`
	Comments    int64           `json:"comments" validate:"gte=0"`
	Shares      int64           `json:"shares" validate:"gte=0"`
	Impressions int64           `json:"impressions" validate:"gte=0"`
	Reach       int64           `json:"reach" validate:"gte=0"`
}

// List godoc
// @Summary List metrics
// @Tags metrics
// @Produce json
// @Security BearerAuth
// @Param platform query string false "Platform"
// @Param profileId query string false "Profile ID"
// @Param startDate query string false "Earliest date (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string false "Latest date (RFC3339 or YYYY-MM-DD)"
// @Param userId query string false "Owner (admins only)"
// @Success 200 {array} domain.SocialMetrics
// @Failure 400 {object} errors.ErrorResponse
// @Router /metrics [get]
func (h *MetricsHandler) List(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	filter := domain.MetricsFilter{
		Platform:  domain.Platform(c.QueryParam("platform")),
		ProfileID: c.QueryParam("profileId"),
	}
	if filter.StartDate, err = parseDate(c.QueryParam("startDate")); err != nil {
		return badRequest("startDate: " + err.Error())
	}
	if filter.EndDate, err = parseDate(c.QueryParam("endDate")); err != nil {
		return badRequest("endDate: " + err.Error())
	}
	metrics, err := h.metrics.GetMetricsByUserID(c.Request().Context(), userID, filter)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, metrics)
}

// Growth godoc
// @Summary Follower growth
// @Tags metrics
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days: 7, 30, 90 or 365" default(30)
// @Param platform query string false "Platform"
// @Param userId query string false "Owner (admins only)"
// @Success 200 {array} domain.FollowerGrowthPoint
// @Failure 400 {object} errors.ErrorResponse
// @Router /metrics/growth [get]
func (h *MetricsHandler) Growth(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			return badRequest("days must be a number")
		}
	}
	points, err := h.metrics.GetFollowerGrowth(c.Request().Context(), userID, days, domain.Platform(c.QueryParam("platform")))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, points)
}

// Upsert godoc
// @Summary Create or refresh platform metrics
// @Tags metrics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpsertMetricsRequest true "Counters"
// @Param userId query string false "Owner (admins only)"
// @Success 200 {object} domain.SocialMetrics
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /metrics [post]
func (h *MetricsHandler) Upsert(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	var req UpsertMetricsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ProfileID != nil {
		if err := h.profileOf(c, *req.ProfileID, userID); err != nil {
			return err
		}
	}
	m, err := h.metrics.UpsertMetrics(c.Request().Context(), service.MetricsInput{
		UserID:      userID,
		ProfileID:   req.ProfileID,
		Platform:    req.Platform,
		Date:        req.Date,
		Followers:   req.Followers,
		Following:   req.Following,
		Posts:       req.Posts,
		Likes:       req.Likes,
		Comments:    req.Comments,
		Shares:      req.Shares,
		Impressions: req.Impressions,
		Reach:       req.Reach,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, m)
}

// profileOf checks that profile id belongs to userID.
func (h *MetricsHandler) profileOf(c echo.Context, id, userID string) error {
	profile, err := h.profiles.GetProfile(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	if profile == nil {
		return fail(errors.ErrNotFound)
	}
	if profile.UserID != userID {
		return fail(errors.ErrForbidden)
	}
	return nil
}

// AppendDaily godoc
// @Summary Append a daily snapshot
// @Description Dates must be strictly increasing per platform.
// @Tags metrics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DailySnapshotRequest true "Snapshot"
// @Param userId query string false "Owner (admins only)"
// @Success 200 {object} domain.SocialMetrics
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /metrics/daily [post]
func (h *MetricsHandler) AppendDaily(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	var req DailySnapshotRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.metrics.AppendDailySnapshot(c.Request().Context(), userID, req.Platform, domain.DailyMetric{
		Date:        req.Date,
		Followers:   req.Followers,
		Likes:       req.Likes,
		Comments:    req.Comments,
		Shares:      req.Shares,
		Impressions: req.Impressions,
		Reach:       req.Reach,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, m)
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
