package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"socialdash/internal/config"
	"socialdash/internal/db"
	"socialdash/internal/logging"
	"socialdash/internal/mockdata"
	"socialdash/internal/repository"
	"socialdash/internal/service"
)

// Seeds the database with one generated mock dataset. SEED_EMAIL selects the
// owner (created when missing) and SEED_RANDOM makes the run reproducible.
func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting seed script")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn := db.NewConnector(db.MySQL(cfg.MySQLDSN), logger)
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}
	logger.Info("database migrations completed")

	repos := repository.NewRepositories(conn, logger)
	services := mockdata.Services{
		Users:       service.NewUserService(repos.Users, nil),
		Profiles:    service.NewProfileService(repos.Profiles, time.Now),
		Metrics:     service.NewMetricsService(repos.Metrics, time.Now),
		Suggestions: service.NewSuggestionService(repos.Suggestions, time.Now),
	}

	opts := mockdata.Options{
		UserName:  os.Getenv("SEED_NAME"),
		UserEmail: os.Getenv("SEED_EMAIL"),
		Profiles:  cfg.Client.MockProfiles,
	}
	if raw := os.Getenv("SEED_RANDOM"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			logger.WithError(err).Fatal("SEED_RANDOM must be an unsigned integer")
		}
		opts.Seed = seed
	}
	ds := mockdata.NewSession(opts).All()

	stored, err := mockdata.SeedDatabase(ctx, services, ds)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed mock data")
	}

	logger.WithFields(logging.Fields{
		"user_id":     stored.User.ID,
		"email":       stored.User.Email,
		"profiles":    len(stored.Profiles),
		"metrics":     len(stored.Metrics),
		"suggestions": len(stored.Suggestions),
	}).Info("seed completed successfully")
}
