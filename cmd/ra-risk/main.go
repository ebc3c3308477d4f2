package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ra-risk-server/internal/config"
	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/formatter"
	"github.com/ra-risk-server/internal/logging"
)

var version = "v1.0.0" // Overwritten at build time

type globalFlags struct {
	configFile string
	output     string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "ra-risk",
		Short: "Rheumatoid arthritis risk scoring from lab panels",
		Long: `ra-risk scores rheumatoid arthritis risk from ESR, CRP, RF and Anti-CCP
results, compares two panels over time and generates lifestyle guidance.
It also manages the clinician feedback store and MCP client registration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !formatter.ValidFormat(flags.output) {
				return fmt.Errorf("unsupported output format %q (human, json, yaml)", flags.output)
			}
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log to stderr at debug level")

	rootCmd.AddCommand(
		newScoreCmd(flags),
		newCompareCmd(flags),
		newRecommendCmd(flags),
		newMigrateCmd(flags),
		newFeedbackCmd(flags),
		newSetupCmd(flags),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ra-risk version %s\n", version)
		},
	}
}

// load reads .env and configuration and builds a stderr logger. stdout is
// reserved for command output.
func (f *globalFlags) load() (*domain.Config, *logrus.Logger, io.Closer, error) {
	_ = godotenv.Load()

	manager, err := config.NewManager(f.configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg := manager.GetConfig()

	logCfg := domain.LoggingConfig{Level: "warn", Format: "text", Output: "stderr"}
	if f.verbose {
		logCfg.Level = "debug"
	}
	logger, closer, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}
