package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"socialdash/internal/logging"
	"socialdash/internal/mockdata"
)

// SeedHandler handles mock data endpoints. They are routed only in mock mode.
type SeedHandler struct {
	session  *mockdata.Session
	services mockdata.Services
	logger   logging.Logger
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(session *mockdata.Session, services mockdata.Services, logger logging.Logger) *SeedHandler {
	return &SeedHandler{session: session, services: services, logger: logging.OrDiscard(logger)}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message     string `json:"message"`
	Profiles    int    `json:"profiles"`
	Metrics     int    `json:"metrics"`
	Suggestions int    `json:"suggestions"`
}

// SeedMock godoc
// @Summary Seed mock data for the signed-in user
// @Description Stores the session's mock profiles, metrics and suggestions. Existing profiles and history are kept.
// @Tags mock
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed/mock [post]
func (h *SeedHandler) SeedMock(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	ds := *h.session.All()
	ds.User.Email = id.Email

	stored, err := mockdata.SeedDatabase(c.Request().Context(), h.services, &ds)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", id.UserID).Error("mock seed failed")
		return fail(err)
	}
	h.logger.WithFields(logging.Fields{
		"user_id":     stored.User.ID,
		"profiles":    len(stored.Profiles),
		"suggestions": len(stored.Suggestions),
	}).Info("mock data seeded")

	return c.JSON(http.StatusOK, SeedResponse{
		Message:     "mock data seeded successfully",
		Profiles:    len(stored.Profiles),
		Metrics:     len(stored.Metrics),
		Suggestions: len(stored.Suggestions),
	})
}

// Data godoc
// @Summary Get the session mock dataset
// @Description The same dataset is returned for the lifetime of the server.
// @Tags mock
// @Produce json
// @Success 200 {object} mockdata.Dataset
// @Router /mock/data [get]
func (h *SeedHandler) Data(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.All())
}

// Calendar godoc
// @Summary Generate a content calendar
// @Description Recomputed on every call.
// @Tags mock
// @Produce json
// @Param month query int false "Month 1-12, defaults to the current month"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {array} mockdata.CalendarEntry
// @Failure 400 {object} errors.ErrorResponse
// @Router /mock/calendar [get]
func (h *SeedHandler) Calendar(c echo.Context) error {
	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()
	var err error
	if raw := c.QueryParam("month"); raw != "" {
		if month, err = strconv.Atoi(raw); err != nil {
			return badRequest("month must be a number")
		}
	}
	if raw := c.QueryParam("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			return badRequest("year must be a number")
		}
	}
	entries, err := h.session.Calendar(time.Month(month), year)
	if err != nil {
		return badRequest(err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}
