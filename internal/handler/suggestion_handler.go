package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"socialdash/internal/domain"
	"socialdash/internal/errors"
	"socialdash/internal/service"
)

// SuggestionHandler serves content suggestions.
type SuggestionHandler struct {
	suggestions service.SuggestionService
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(suggestions service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

// CreateSuggestionRequest adds a pending suggestion.
type CreateSuggestionRequest struct {
	Title            string            `json:"title" validate:"required"`
	Content          string            `json:"content" validate:"required"`
	Platform         domain.Platform   `json:"platform" validate:"required"`
	MediaType        domain.MediaType  `json:"mediaType" validate:"required"`
	Tags             []string          `json:"tags"`
	BestTimeToPost   *time.Time        `json:"bestTimeToPost"`
	AIGeneratedScore int               `json:"aiGeneratedScore" validate:"gte=0,lte=100"`
	Metadata         map[string]string `json:"metadata"`
}

// UpdateSuggestionRequest edits a suggestion. Omitted fields are kept.
type UpdateSuggestionRequest struct {
	Title            *string           `json:"title" validate:"omitempty,min=1"`
	Content          *string           `json:"content" validate:"omitempty,min=1"`
	Platform         *domain.Platform  `json:"platform"`
	MediaType        *domain.MediaType `json:"mediaType"`
	Tags             []string          `json:"tags"`
	BestTimeToPost   *time.Time        `json:"bestTimeToPost"`
	AIGeneratedScore *int              `json:"aiGeneratedScore" validate:"omitempty,gte=0,lte=100"`
	Metadata         map[string]string `json:"metadata"`
}

// StatusRequest moves a suggestion through its review states.
type StatusRequest struct {
	Status domain.SuggestionStatus `json:"status" validate:"required"`
}

// EngagementRequest records the outcome of a published suggestion.
type EngagementRequest struct {
	Likes       int64      `json:"likes" validate:"gte=0"`
	Comments    int64      `json:"comments" validate:"gte=0"`
	Shares      int64      `json:"shares" validate:"gte=0"`
	Impressions int64      `json:"impressions" validate:"gte=0"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// List godoc
// @Summary List content suggestions
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param platform query string false "Platform filter"
// @Param userId query string false "Owner (admins only)"
// @Success 200 {array} domain.ContentSuggestion
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /content/suggestions [get]
func (h *SuggestionHandler) List(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	filter := domain.SuggestionFilter{
		Status:   domain.SuggestionStatus(c.QueryParam("status")),
		Platform: domain.Platform(c.QueryParam("platform")),
	}
	suggestions, err := h.suggestions.GetSuggestionsByUserID(c.Request().Context(), userID, filter)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, suggestions)
}

// Get godoc
// @Summary Get a content suggestion
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Success 200 {object} domain.ContentSuggestion
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /content/suggestions/{id} [get]
func (h *SuggestionHandler) Get(c echo.Context) error {
	sg, err := h.owned(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sg)
}

// Create godoc
// @Summary Add a content suggestion
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSuggestionRequest true "Suggestion"
// @Param userId query string false "Owner (admins only)"
// @Success 201 {object} domain.ContentSuggestion
// @Failure 400 {object} errors.ErrorResponse
// @Router /content/suggestions [post]
func (h *SuggestionHandler) Create(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	var req CreateSuggestionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sg, err := h.suggestions.AddSuggestion(c.Request().Context(), service.NewSuggestion{
		UserID:           userID,
		Title:            req.Title,
		Content:          req.Content,
		Platform:         req.Platform,
		MediaType:        req.MediaType,
		Tags:             req.Tags,
		BestTimeToPost:   req.BestTimeToPost,
		AIGeneratedScore: req.AIGeneratedScore,
		Metadata:         req.Metadata,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, sg)
}

// Update godoc
// @Summary Edit a content suggestion
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Param request body UpdateSuggestionRequest true "Fields to change"
// @Success 200 {object} domain.ContentSuggestion
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /content/suggestions/{id} [put]
func (h *SuggestionHandler) Update(c echo.Context) error {
	var req UpdateSuggestionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	current, err := h.owned(c)
	if err != nil {
		return err
	}
	sg, err := h.suggestions.UpdateSuggestion(c.Request().Context(), current.ID, service.SuggestionPatch{
		Title:            req.Title,
		Content:          req.Content,
		Platform:         req.Platform,
		MediaType:        req.MediaType,
		Tags:             req.Tags,
		BestTimeToPost:   req.BestTimeToPost,
		AIGeneratedScore: req.AIGeneratedScore,
		Metadata:         req.Metadata,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, sg)
}

// UpdateStatus godoc
// @Summary Change the review status of a suggestion
// @Description pending -> approved|rejected, approved -> published.
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} domain.ContentSuggestion
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /content/suggestions/{id}/status [patch]
func (h *SuggestionHandler) UpdateStatus(c echo.Context) error {
	var req StatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	current, err := h.owned(c)
	if err != nil {
		return err
	}
	sg, err := h.suggestions.UpdateSuggestionStatus(c.Request().Context(), current.ID, req.Status)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, sg)
}

// RecordEngagement godoc
// @Summary Record the engagement of a published suggestion
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Param request body EngagementRequest true "Engagement counters"
// @Success 200 {object} domain.ContentSuggestion
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /content/suggestions/{id}/engagement [post]
func (h *SuggestionHandler) RecordEngagement(c echo.Context) error {
	var req EngagementRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	current, err := h.owned(c)
	if err != nil {
		return err
	}
	sg, err := h.suggestions.RecordEngagement(c.Request().Context(), current.ID, domain.Engagement{
		Likes:       req.Likes,
		Comments:    req.Comments,
		Shares:      req.Shares,
		Impressions: req.Impressions,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, sg)
}

// Delete godoc
// @Summary Delete a content suggestion
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Success 200 {object} domain.ContentSuggestion
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /content/suggestions/{id} [delete]
func (h *SuggestionHandler) Delete(c echo.Context) error {
	current, err := h.owned(c)
	if err != nil {
		return err
	}
	sg, err := h.suggestions.DeleteSuggestion(c.Request().Context(), current.ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, sg)
}

func (h *SuggestionHandler) owned(c echo.Context) (*domain.ContentSuggestion, error) {
	sg, err := h.suggestions.GetSuggestion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, fail(err)
	}
	if sg == nil {
		return nil, fail(errors.ErrNotFound)
	}
	if err := authorize(c, sg.UserID); err != nil {
		return nil, err
	}
	return sg, nil
}
