package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ra-risk-server/internal/app"
	"github.com/ra-risk-server/internal/feedback"
	"github.com/ra-risk-server/internal/formatter"
	"github.com/ra-risk-server/internal/setup"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run feedback database migrations (postgres backend)",
	}

	run := func(up bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := flags.load()
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := app.Migrate(cfg.Feedback, logger, up); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Migrations applied"))
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(true)},
		&cobra.Command{Use: "down", Short: "Roll back the latest migration", Args: cobra.NoArgs, RunE: run(false)},
	)
	return cmd
}

func newFeedbackCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Export or import clinician feedback",
	}

	withStore := func(cmd *cobra.Command, fn func(feedback.Store) error) error {
		cfg, _, closer, err := flags.load()
		if err != nil {
			return err
		}
		defer closer.Close()

		store, err := feedback.Open(cmd.Context(), cfg.Feedback)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(store)
	}

	exportCmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write all feedback as JSON to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store feedback.Store) error {
				var w io.Writer = cmd.OutOrStdout()
				if len(args) == 1 && args[0] != "-" {
					f, err := os.Create(args[0])
					if err != nil {
						return fmt.Errorf("failed to create export file: %w", err)
					}
					defer f.Close()
					w = f
				}
				return store.ExportJSON(cmd.Context(), w)
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load feedback from a JSON export, skipping existing assessments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store feedback.Store) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open import file: %w", err)
				}
				defer f.Close()

				imported, skipped, err := store.ImportJSON(cmd.Context(), f)
				if err != nil {
					return err
				}
				return formatter.Value(cmd.OutOrStdout(), map[string]int{"imported": imported, "skipped": skipped}, flags.output)
			})
		},
	}

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}

func newSetupCmd(flags *globalFlags) *cobra.Command {
	var (
		clientConfig string
		binary       string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with a desktop MCP client",
	}
	cmd.PersistentFlags().StringVar(&clientConfig, "client-config", "", "MCP client config file (default: platform location)")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Add or update the ra-risk entry in the client config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := setup.Register(setup.Options{
				ClientConfigPath: clientConfig,
				BinaryPath:       binary,
				ConfigFile:       flags.configFile,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("Registered ra-risk in"), path)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&binary, "binary", "", "Path to the mcp-server binary (default: search PATH)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := setup.GetStatus(clientConfig)
			if err != nil {
				return err
			}
			if flags.output != formatter.FormatHuman {
				return formatter.Value(cmd.OutOrStdout(), status, flags.output)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Client config: %s\n", status.ClientConfigPath)
			if status.Registered {
				fmt.Fprintf(w, "Registered:    %s\n", color.GreenString(status.ServerPath))
			} else {
				fmt.Fprintf(w, "Registered:    %s\n", color.RedString("no"))
			}
			for _, issue := range status.Issues {
				fmt.Fprintf(w, "  %s %s\n", color.YellowString("!"), issue)
			}
			return nil
		},
	}

	cmd.AddCommand(registerCmd, statusCmd)
	return cmd
}
