package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"socialdash/internal/errors"
	"socialdash/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MockLoginRequest signs in by email alone.
type MockLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshResponse carries a new access token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} domain.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authFailure(err)
	}
	return c.JSON(http.StatusOK, session)
}

// MockLogin godoc
// @Summary Login by email in mock mode
// @Description Creates the user on first use. Only available when the server runs with MOCK_MODE.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body MockLoginRequest true "Identity"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/mock-login [post]
func (h *AuthHandler) MockLogin(c echo.Context) error {
	var req MockLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.MockLogin(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, session)
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} RefreshResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return authFailure(err)
	}
	return c.JSON(http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the refresh token and the access token the request was made with.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest true "Refresh token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken, tokenID(c)); err != nil {
		return authFailure(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

func authFailure(err error) error {
	switch {
	case stderrors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CREDENTIALS",
		})
	case stderrors.Is(err, service.ErrInvalidRefreshToken):
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REFRESH_TOKEN",
		})
	default:
		return fail(err)
	}
}
