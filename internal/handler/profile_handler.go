package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"socialdash/internal/domain"
	"socialdash/internal/errors"
	"socialdash/internal/service"
)

// ProfileHandler serves the social profiles of the signed-in user.
type ProfileHandler struct {
	profiles service.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// CreateProfileRequest links a social profile.
type CreateProfileRequest struct {
	Platform   domain.Platform   `json:"platform" validate:"required,oneof=instagram twitter facebook linkedin tiktok youtube"`
	Username   string            `json:"username" validate:"required"`
	ProfileURL string            `json:"profileUrl" validate:"required,url"`
	Connected  *bool             `json:"connected"`
	Followers  int64             `json:"followers" validate:"gte=0"`
	Metadata   map[string]string `json:"metadata"`
}

// UpdateProfileRequest changes a linked profile. Omitted fields are kept.
type UpdateProfileRequest struct {
	Username   *string           `json:"username" validate:"omitempty,min=1"`
	ProfileURL *string           `json:"profileUrl" validate:"omitempty,url"`
	Connected  *bool             `json:"connected"`
	Followers  *int64            `json:"followers" validate:"omitempty,gte=0"`
	Metadata   map[string]string `json:"metadata"`
}

// List godoc
// @Summary List social profiles
// @Tags social-profiles
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Owner (admins only)"
// @Success 200 {array} domain.SocialProfile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /social-profiles [get]
func (h *ProfileHandler) List(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	profiles, err := h.profiles.GetProfilesByUserID(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, profiles)
}

// Get godoc
// @Summary Get a social profile
// @Tags social-profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} domain.SocialProfile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /social-profiles/{id} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	profile, err := h.owned(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Create godoc
// @Summary Link a social profile
// @Description At most one profile per platform and user.
// @Tags social-profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProfileRequest true "Profile"
// @Param userId query string false "Owner (admins only)"
// @Success 201 {object} domain.SocialProfile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /social-profiles [post]
func (h *ProfileHandler) Create(c echo.Context) error {
	userID, err := targetUser(c)
	if err != nil {
		return err
	}
	var req CreateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.AddProfile(c.Request().Context(), service.NewProfile{
		UserID:     userID,
		Platform:   req.Platform,
		Username:   req.Username,
		ProfileURL: req.ProfileURL,
		Connected:  req.Connected,
		Followers:  req.Followers,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, profile)
}

// Update godoc
// @Summary Update a social profile
// @Tags social-profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} domain.SocialProfile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /social-profiles/{id} [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	current, err := h.owned(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.UpdateProfile(c.Request().Context(), current.ID, service.ProfilePatch{
		Username:   req.Username,
		ProfileURL: req.ProfileURL,
		Connected:  req.Connected,
		Followers:  req.Followers,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// Delete godoc
// @Summary Unlink a social profile
// @Tags social-profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} domain.SocialProfile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /social-profiles/{id} [delete]
func (h *ProfileHandler) Delete(c echo.Context) error {
	current, err := h.owned(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.DeleteProfile(c.Request().Context(), current.ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// owned loads the :id profile and checks the caller may act on it.
func (h *ProfileHandler) owned(c echo.Context) (*domain.SocialProfile, error) {
	profile, err := h.profiles.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, fail(err)
	}
	if profile == nil {
		return nil, fail(errors.ErrNotFound)
	}
	if err := authorize(c, profile.UserID); err != nil {
		return nil, err
	}
	return profile, nil
}
