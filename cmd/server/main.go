package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ra-risk-server/internal/api"
	"github.com/ra-risk-server/internal/app"
	"github.com/ra-risk-server/internal/config"
	"github.com/ra-risk-server/internal/logging"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "ra-risk server: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	configManager, err := config.NewManager(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg := configManager.GetConfig()

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer application.Close()

	server := api.NewServer(cfg, api.Dependencies{
		Engine:    application.Engine,
		Feedback:  application.Feedback,
		Readiness: application.Readiness,
		Logger:    logger,
	})

	logger.WithField("port", cfg.Server.Port).Info("Starting RA risk server")
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
