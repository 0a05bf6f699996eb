package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"socialdash/internal/domain"
	"socialdash/internal/errors"
	"socialdash/internal/service"
)

// UserHandler serves the signed-in user's own record.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest lists the fields a user may change.
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Image *string `json:"image" validate:"omitempty,url"`
}

// LinkAccountRequest attaches an external provider account.
type LinkAccountRequest struct {
	Provider          string     `json:"provider" validate:"required"`
	ProviderAccountID string     `json:"providerAccountId" validate:"required"`
	AccessToken       *string    `json:"accessToken"`
	RefreshToken      *string    `json:"refreshToken"`
	ExpiresAt         *time.Time `json:"expiresAt"`
}

// Me godoc
// @Summary Get the signed-in user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUserByID(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(err)
	}
	if user == nil {
		return fail(errors.ErrNotFound)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the signed-in user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} domain.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateProfile(c.Request().Context(), id.UserID, service.UserPatch{Name: req.Name, Image: req.Image})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// LinkAccount godoc
// @Summary Link an external provider account
// @Description Replaces an existing link with the same provider and account id.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LinkAccountRequest true "Provider account"
// @Success 200 {object} domain.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me/accounts [post]
func (h *UserHandler) LinkAccount(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req LinkAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.AddUserAccount(c.Request().Context(), id.UserID, domain.LinkedAccount{
		Provider:          req.Provider,
		ProviderAccountID: req.ProviderAccountID,
		AccessToken:       req.AccessToken,
		RefreshToken:      req.RefreshToken,
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}
