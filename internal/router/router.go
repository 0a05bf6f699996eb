package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"socialdash/internal/auth"
	"socialdash/internal/config"
	"socialdash/internal/errors"
	"socialdash/internal/handler"
	"socialdash/internal/logging"
)

// Handlers groups every HTTP handler the router mounts. Seed may be nil
// outside mock mode.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Profiles    *handler.ProfileHandler
	Suggestions *handler.SuggestionHandler
	Metrics     *handler.MetricsHandler
	Seed        *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, jwtService *auth.JWTService, tokens auth.TokenStoreInterface, h Handlers, logger logging.Logger) {
	logger = logging.OrDiscard(logger)

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	if cfg.MockMode {
		api.POST("/auth/mock-login", h.Auth.MockLogin)
		if h.Seed != nil {
			api.GET("/mock/data", h.Seed.Data)
			api.GET("/mock/calendar", h.Seed.Calendar)
		}
	}

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  jwtService.Secret(),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  handler.ContextKeyToken,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), rejectRevoked(tokens, logger))

	secured.POST("/auth/logout", h.Auth.Logout)

	secured.GET("/users/me", h.Users.Me)
	secured.PATCH("/users/me", h.Users.UpdateMe)
	secured.POST("/users/me/accounts", h.Users.LinkAccount)

	secured.GET("/social-profiles", h.Profiles.List)
	secured.POST("/social-profiles", h.Profiles.Create)
	secured.GET("/social-profiles/:id", h.Profiles.Get)
	secured.PUT("/social-profiles/:id", h.Profiles.Update)
	secured.DELETE("/social-profiles/:id", h.Profiles.Delete)

	secured.GET("/content/suggestions", h.Suggestions.List)
	secured.POST("/content/suggestions", h.Suggestions.Create)
	secured.GET("/content/suggestions/:id", h.Suggestions.Get)
	secured.PUT("/content/suggestions/:id", h.Suggestions.Update)
	secured.PATCH("/content/suggestions/:id/status", h.Suggestions.UpdateStatus)
	secured.POST("/content/suggestions/:id/engagement", h.Suggestions.RecordEngagement)
	secured.DELETE("/content/suggestions/:id", h.Suggestions.Delete)

	secured.GET("/metrics", h.Metrics.List)
	secured.POST("/metrics", h.Metrics.Upsert)
	secured.GET("/metrics/growth", h.Metrics.Growth)
	secured.POST("/metrics/daily", h.Metrics.AppendDaily)

	if cfg.MockMode && h.Seed != nil {
		secured.POST("/seed/mock", h.Seed.SeedMock)
	}
}

// rejectRevoked refuses access tokens that were revoked by logout.
func rejectRevoked(tokens auth.TokenStoreInterface, logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(handler.ContextKeyToken).(*jwt.Token)
			if !ok {
				return next(c)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.ID == "" {
				return next(c)
			}
			revoked, err := tokens.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				// redis down: tokens stay valid until they expire
				logger.WithError(err).Warn("token blacklist lookup failed")
				return next(c)
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "token has been revoked",
					Code:  "TOKEN_REVOKED",
				})
			}
			return next(c)
		}
	}
}

func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logging.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by the API.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
