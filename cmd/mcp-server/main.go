package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ra-risk-server/internal/app"
	"github.com/ra-risk-server/internal/config"
	"github.com/ra-risk-server/internal/logging"
	"github.com/ra-risk-server/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "ra-risk mcp-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	_ = godotenv.Load()

	configManager, err := config.NewManager(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg := configManager.GetConfig()

	// stdout carries the protocol.
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}
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

	server := mcp.NewServer(cfg.MCP, application.Engine, application.Feedback, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	logger.Info("MCP server stopped")
	return nil
}
