package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ra-risk-server/internal/api"
	"github.com/ra-risk-server/internal/app"
	"github.com/ra-risk-server/internal/formatter"
)

func newScoreCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "score [FILE]",
		Short: "Score a single lab panel",
		Long: `Score a single lab panel read from FILE or stdin.

The input uses the same JSON fields as POST /api/predict-ra-risk:

  {"age": 45, "gender": "Female", "rheumatoidFactor": 16, "antiCCP": 10,
   "cReactiveProtein": 8, "erythrocyteSedimentationRate": 25}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.PredictRequest
			if err := readRequest(cmd, args, &req); err != nil {
				return err
			}
			panel, err := req.Panel()
			if err != nil {
				return err
			}

			return withApp(cmd, flags, func(a *app.App) error {
				resp := api.NewPredictResponse(a.Engine.Predict(cmd.Context(), panel))
				return formatter.Prediction(cmd.OutOrStdout(), resp, flags.output)
			})
		},
	}
}

func newCompareCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [FILE]",
		Short: "Compare two lab panels taken months apart",
		Long: `Compare two lab panels read from FILE or stdin, using the JSON fields of
POST /api/compare-ra-risk (monthsSinceLastTest, previous* and current*).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.CompareRequest
			if err := readRequest(cmd, args, &req); err != nil {
				return err
			}
			previous, current, months, err := req.Panels()
			if err != nil {
				return err
			}

			return withApp(cmd, flags, func(a *app.App) error {
				resp := api.NewCompareResponse(a.Engine.Compare(cmd.Context(), previous, current, months))
				return formatter.Comparison(cmd.OutOrStdout(), resp, flags.output)
			})
		},
	}
}

func newRecommendCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [FILE]",
		Short: "Generate lifestyle guidance for a patient",
		Long: `Generate diet, exercise, lifestyle and mental wellness guidance from FILE or
stdin, using the JSON fields of POST /api/generate-recommendations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.RecommendRequest
			if err := readRequest(cmd, args, &req); err != nil {
				return err
			}
			panel, lifestyle, err := req.Inputs()
			if err != nil {
				return err
			}

			return withApp(cmd, flags, func(a *app.App) error {
				resp := api.NewRecommendResponse(a.Engine.Recommend(cmd.Context(), panel, lifestyle))
				return formatter.Recommendations(cmd.OutOrStdout(), resp, flags.output)
			})
		},
	}
}

func withApp(cmd *cobra.Command, flags *globalFlags, fn func(*app.App) error) error {
	cfg, logger, closer, err := flags.load()
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := app.Build(cmd.Context(), cfg, logger, app.Options{SkipFeedback: true})
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

// readRequest decodes JSON from the file named in args, or stdin when no
// file (or "-") is given.
func readRequest(cmd *cobra.Command, args []string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("no input received")
		}
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}
