package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "socialdash/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"socialdash/internal/auth"
	"socialdash/internal/cache"
	"socialdash/internal/config"
	"socialdash/internal/db"
	"socialdash/internal/handler"
	"socialdash/internal/logging"
	"socialdash/internal/mockdata"
	"socialdash/internal/repository"
	"socialdash/internal/router"
	"socialdash/internal/service"
)

// @title Social Dashboard API
// @version 1.0
// @description Social media dashboard API: linked profiles, platform metrics, AI content suggestions and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	conn := db.NewConnector(db.MySQL(cfg.MySQLDSN), logger)
	defer conn.Close()

	if os.Getenv("RESET_DB") == "true" {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(ctx, conn); err != nil {
			logger.WithError(err).Warn("failed to drop tables")
		}
	}
	if err := db.Migrate(ctx, conn); err != nil {
		logger.WithError(err).Fatal("database migration failed")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
	defer cacheClient.Close()

	repos := repository.NewRepositories(conn, logger)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	userService := service.NewUserService(repos.Users, cacheClient)
	profileService := service.NewProfileService(repos.Profiles, time.Now)
	metricsService := service.NewMetricsService(repos.Metrics, time.Now)
	suggestionService := service.NewSuggestionService(repos.Suggestions, time.Now)
	authService := service.NewAuthService(userService, repos.Users, jwtService, tokenStore)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserHandler(userService),
		Profiles:    handler.NewProfileHandler(profileService),
		Suggestions: handler.NewSuggestionHandler(suggestionService),
		Metrics:     handler.NewMetricsHandler(metricsService, profileService),
	}
	if cfg.MockMode {
		session := mockdata.NewSession(mockdata.Options{Profiles: cfg.Client.MockProfiles})
		handlers.Seed = handler.NewSeedHandler(session, mockdata.Services{
			Users:       userService,
			Profiles:    profileService,
			Metrics:     metricsService,
			Suggestions: suggestionService,
		}, logger)
		logger.Info("mock mode enabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, jwtService, tokenStore, handlers, logger)

	logger.Infof("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server start failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
}

func swaggerURL(host string) string {
	switch {
	case host == "":
		// docker-compose maps the container's 8080 to 5000
		return "http://localhost:5000/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
