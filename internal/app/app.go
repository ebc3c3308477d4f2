// Package app assembles the engine and its collaborators from configuration.
// Every binary builds its runtime through Build so the HTTP server, the MCP
// server and the CLI score panels identically.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ra-risk-server/internal/api"
	"github.com/ra-risk-server/internal/cache"
	"github.com/ra-risk-server/internal/database"
	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/feedback"
	"github.com/ra-risk-server/internal/model"
	"github.com/ra-risk-server/internal/service"
	"github.com/ra-risk-server/pkg/external"
)

// App holds the assembled runtime.
type App struct {
	Config    *domain.Config
	Logger    *logrus.Logger
	Engine    *service.Engine
	Feedback  feedback.Store
	Readiness []api.Checker

	closers []func() error
}

// Options narrow what Build wires. The CLI scores panels without touching
// the feedback store.
type Options struct {
	SkipFeedback bool
}

// Build wires the predictor, probability cache and feedback store described
// by cfg. A Redis cache that cannot be reached is logged and skipped; every
// other failure is returned.
func Build(ctx context.Context, cfg *domain.Config, logger *logrus.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	predictor, err := a.buildPredictor(cfg.Model)
	if err != nil {
		a.Close()
		return nil, err
	}

	var probabilities domain.ProbabilityCache
	if cfg.Cache.Enabled && predictor != nil {
		probabilities = a.buildCache(ctx, cfg.Cache)
	}

	a.Engine = service.NewEngine(service.NewModelAdapter(predictor, probabilities, logger), logger)

	if opts.SkipFeedback {
		a.Feedback = feedback.Disabled{}
	} else if err := a.buildFeedback(ctx, cfg.Feedback); err != nil {
		a.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"model_loaded":     a.Engine.ModelAvailable(),
		"model":            a.Engine.ModelName(),
		"cache_enabled":    probabilities != nil,
		"feedback_backend": backendName(cfg.Feedback.Backend),
	}).Info("Runtime assembled")

	return a, nil
}

// Close releases stores and connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) buildPredictor(cfg domain.ModelConfig) (domain.Predictor, error) {
	switch {
	case cfg.Path != "":
		p, err := model.Load(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load model artifact: %w", err)
		}
		return p, nil

	case cfg.RemoteURL != "":
		client := external.NewInferenceClient(external.InferenceConfig{
			BaseURL:   cfg.RemoteURL,
			Timeout:   cfg.RemoteTimeout,
			RateLimit: cfg.RemoteRateLimit,
		})
		a.Readiness = append(a.Readiness, api.Checker{Name: "inference", Check: client.Health})

		return external.NewBreakerPredictor(client, external.CircuitBreakerConfig{
			MaxRequests: cfg.BreakerMaxRequests,
			Interval:    cfg.BreakerInterval,
			Timeout:     cfg.BreakerTimeout,
		}, a.Logger), nil

	default:
		a.Logger.Warn("No model configured, predictions use the rule score only")
		return nil, nil
	}
}

func (a *App) buildCache(ctx context.Context, cfg domain.CacheConfig) domain.ProbabilityCache {
	var remote cache.RemoteStore
	if cfg.RedisURL != "" {
		rc, err := external.NewRedisCache(ctx, cfg)
		if err != nil {
			a.Logger.WithError(err).Warn("Redis cache unavailable, using in-process cache only")
		} else {
			remote = rc
			a.onClose(rc.Close)
			a.Readiness = append(a.Readiness, api.Checker{Name: "redis", Check: rc.Ping})
		}
	}

	return cache.NewTiered(cache.Config{MaxItems: cfg.MaxItems, TTL: cfg.TTL}, remote, a.Logger)
}

func (a *App) buildFeedback(ctx context.Context, cfg domain.FeedbackConfig) error {
	if backendName(cfg.Backend) == "postgres" {
		if cfg.AutoMigrate {
			if err := Migrate(cfg, a.Logger, true); err != nil {
				return err
			}
		}

		db, err := database.NewConnection(ctx, cfg.DatabaseURL, cfg.MaxConns, a.Logger)
		if err != nil {
			return err
		}
		a.onClose(func() error { db.Close(); return nil })
		a.Readiness = append(a.Readiness, api.Checker{Name: "feedback_db", Check: db.Health})
	}

	store, err := feedback.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open feedback store: %w", err)
	}
	a.Feedback = store
	a.onClose(store.Close)
	return nil
}

// Migrate applies (up) or rolls back one step of (down) the feedback
// migrations against the configured Postgres database.
func Migrate(cfg domain.FeedbackConfig, logger *logrus.Logger, up bool) error {
	if backendName(cfg.Backend) != "postgres" {
		return fmt.Errorf("migrations require the postgres feedback backend, got %q", backendName(cfg.Backend))
	}

	runner, err := database.NewMigrationRunner(cfg.DatabaseURL, cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	if up {
		return runner.Up()
	}
	return runner.Down()
}

func backendName(b string) string {
	b = strings.ToLower(strings.TrimSpace(b))
	if b == "" {
		return "none"
	}
	return b
}
