package cli

import (
	"context"
	"fmt"
	"time"

	"socialdash/internal/apiclient"
	"socialdash/internal/cache"
	"socialdash/internal/config"
	"socialdash/internal/db"
	"socialdash/internal/localstore"
	"socialdash/internal/logging"
	"socialdash/internal/mockdata"
	"socialdash/internal/repository"
	"socialdash/internal/resilient"
	"socialdash/internal/service"
)

// Options are the global flags every command shares.
type Options struct {
	Output  string
	Offline bool
	Direct  bool
	Email   string
}

// App is what a command runs against.
type App struct {
	Client  *resilient.Client
	Store   localstore.Store
	Session *mockdata.Session

	// Served is the tier that answered the last call.
	Served resilient.Tier

	closers []func() error
}

// Close releases the connections the app opened.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// served is passed to resilient.OnServed.
func (a *App) served(_ string, tier resilient.Tier) {
	a.Served = tier
}

// Factory builds the App for one invocation.
type Factory func(ctx context.Context, opts Options) (*App, error)

// DefaultFactory wires the tiers from cfg: the API at cfg.Client.APIBaseURL,
// MySQL when --direct is set, and the configured local cache backend.
func DefaultFactory(cfg *config.Config, logger logging.Logger) Factory {
	logger = logging.OrDiscard(logger)
	return func(ctx context.Context, opts Options) (*App, error) {
		app := &App{
			Session: mockdata.NewSession(mockdata.Options{Profiles: cfg.Client.MockProfiles}),
		}

		backend, closeBackend, err := localBackend(cfg, logger)
		if err != nil {
			return nil, err
		}
		if closeBackend != nil {
			app.closers = append(app.closers, closeBackend)
		}
		app.Store = localstore.NewResilient(backend, logger)

		var remote resilient.Remote
		if !opts.Offline {
			api, err := apiclient.New(apiclient.Config{
				BaseURL:        cfg.Client.APIBaseURL,
				Timeout:        cfg.Client.TierTimeout,
				MaxRetries:     cfg.Client.RemoteRetries,
				CircuitBreaker: true,
				Logger:         logger,
			})
			if err != nil {
				return nil, err
			}
			authenticate(ctx, api, app.Store, opts.Email, logger)
			remote = api
		}

		var direct resilient.Direct
		if opts.Direct {
			conn := db.NewConnector(db.MySQL(cfg.MySQLDSN), logger)
			app.closers = append(app.closers, conn.Close)
			repos := repository.NewRepositories(conn, logger)
			direct = resilient.Direct{
				Profiles:    service.NewProfileService(repos.Profiles, time.Now),
				Suggestions: service.NewSuggestionService(repos.Suggestions, time.Now),
				Metrics:     service.NewMetricsService(repos.Metrics, time.Now),
			}
		}

		app.Client = resilient.New(remote, direct, app.Store, time.Now,
			resilient.WithTierTimeout(cfg.Client.TierTimeout),
			resilient.WithLogger(logger),
			resilient.OnServed(app.served),
		)
		return app, nil
	}
}

func localBackend(cfg *config.Config, logger logging.Logger) (localstore.Store, func() error, error) {
	switch cfg.Client.CacheBackend {
	case "memory":
		return localstore.NewMemoryStore(), nil, nil
	case "redis":
		client := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
		return localstore.NewRedisStore(client, "dashctl:"), client.Close, nil
	case "file", "":
		return localstore.NewFileStore(cfg.Client.CachePath), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Client.CacheBackend)
	}
}

// authenticate reuses the cached token, or signs in by email against a
// backend in mock mode. Failures leave the client anonymous; the remote tier
// then fails and the chain falls back.
func authenticate(ctx context.Context, api *apiclient.Client, store localstore.Store, email string, logger logging.Logger) {
	if email == "" {
		if token, ok, _ := store.GetItem(ctx, localstore.KeyAuthToken); ok {
			api.SetToken(token)
		}
		return
	}
	session, err := api.MockLogin(ctx, email, "")
	if err != nil {
		logger.WithError(err).WithField("email", email).Warn("mock login failed")
		return
	}
	_ = store.SetItem(ctx, localstore.KeyAuthToken, session.AccessToken)
	if session.User != nil {
		_ = store.SetItem(ctx, localstore.KeyUserID, session.User.ID)
	}
}
