package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"socialdash/internal/auth"
	"socialdash/internal/errors"
)

// ContextKeyToken is where the JWT middleware stores the parsed token.
const ContextKeyToken = "user"

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// identity returns the authenticated subject of the request.
func identity(c echo.Context) (auth.Identity, error) {
	token, ok := c.Get(ContextKeyToken).(*jwt.Token)
	if !ok {
		return auth.Identity{}, unauthorized()
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok || claims.UserID == "" {
		return auth.Identity{}, unauthorized()
	}
	return claims.Identity, nil
}

// tokenID returns the jti of the request's access token, or "".
func tokenID(c echo.Context) string {
	token, ok := c.Get(ContextKeyToken).(*jwt.Token)
	if !ok {
		return ""
	}
	if claims, ok := token.Claims.(*auth.Claims); ok {
		return claims.ID
	}
	return ""
}

// targetUser returns the user a request acts on: the caller, or for admins
// the user named by the userId query parameter.
func targetUser(c echo.Context) (string, error) {
	id, err := identity(c)
	if err != nil {
		return "", err
	}
	if other := c.QueryParam("userId"); other != "" && other != id.UserID {
		if !id.IsAdmin() {
			return "", fail(errors.ErrForbidden)
		}
		return other, nil
	}
	return id.UserID, nil
}

// authorize rejects access to records owned by someone else unless the
// caller is an admin.
func authorize(c echo.Context, ownerID string) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	if ownerID != id.UserID && !id.IsAdmin() {
		return fail(errors.ErrForbidden)
	}
	return nil
}

// fail converts a service error into an HTTP error.
func fail(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  "VALIDATION_ERROR",
	})
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: "missing or invalid token",
		Code:  "UNAUTHORIZED",
	})
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error())
	}
	return nil
}
