// Package formatter renders assessment results for the terminal.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ra-risk-server/internal/api"
	"github.com/ra-risk-server/internal/domain"
)

// Supported output formats.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidFormat reports whether f is one of the supported formats.
func ValidFormat(f string) bool {
	switch f {
	case FormatHuman, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Prediction writes a single prediction in the requested format.
func Prediction(w io.Writer, resp *api.PredictResponse, format string) error {
	if format != FormatHuman {
		return structured(w, resp, format)
	}

	heading := color.New(color.FgCyan, color.Bold)
	level := riskLevelColor(resp.RiskColor)

	fmt.Fprintln(w)
	heading.Fprintln(w, "RA RISK ASSESSMENT")
	fmt.Fprintf(w, "   Assessment: %s\n", resp.AssessmentID)
	level.Fprintf(w, "   Risk level: %s (%.2f%%)\n", resp.RiskLevel, resp.RiskScore)
	fmt.Fprintf(w, "   Stage:      %s\n", resp.Stage)
	fmt.Fprintf(w, "   Model:      %s\n\n", resp.ModelUsed)

	writeFlags(w, heading, resp.Flags)
	writeBreakdown(w, heading, resp.ScoreBreakdown)

	heading.Fprintln(w, "MESSAGES")
	for _, m := range resp.Recommendations {
		fmt.Fprintf(w, "   - %s\n", m)
	}
	fmt.Fprintln(w)
	return nil
}

// Comparison writes a trend comparison in the requested format.
func Comparison(w io.Writer, resp *api.CompareResponse, format string) error {
	if format != FormatHuman {
		return structured(w, resp, format)
	}

	heading := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	heading.Fprintln(w, "RA RISK TREND")
	fmt.Fprintf(w, "   Previous:  %s%%\n", formatNumber(resp.PreviousProbability))
	fmt.Fprintf(w, "   Current:   %s%%\n", formatNumber(resp.CurrentProbability))
	fmt.Fprintf(w, "   Change:    %s%% over %s months\n", formatNumber(resp.ProbabilityChange), formatNumber(resp.MonthsBetweenTests))
	trendColor(resp.RiskTrend).Fprintf(w, "   Trend:     %s\n\n", resp.RiskTrend)

	heading.Fprintln(w, "BIOMARKERS")
	for _, c := range resp.BiomarkerChanges {
		fmt.Fprintf(w, "   %-9s %s\n", c.Name, c.Change)
	}
	fmt.Fprintln(w)

	heading.Fprintln(w, "INTERPRETATION")
	fmt.Fprintf(w, "   %s\n\n", resp.Interpretation)
	return nil
}

// Recommendations writes the guidance blocks in the requested format.
func Recommendations(w io.Writer, resp *api.RecommendResponse, format string) error {
	if format != FormatHuman {
		return structured(w, resp, format)
	}

	heading := color.New(color.FgCyan, color.Bold)
	summary := resp.PatientSummary

	fmt.Fprintln(w)
	heading.Fprintln(w, "PATIENT SUMMARY")
	fmt.Fprintf(w, "   Age %s, %s\n", formatNumber(summary.Age), summary.Gender)
	TierColor(domain.SeverityTier(summary.Severity)).Fprintf(w, "   Severity: %s (score %.2f)\n", summary.Severity, summary.RiskScore)
	if summary.ModelProbability != nil {
		fmt.Fprintf(w, "   Model probability: %.4f\n", *summary.ModelProbability)
	}
	fmt.Fprintln(w)

	writeFlags(w, heading, summary.InflammatoryMarkers)

	for _, block := range []domain.GuidanceBlock{
		resp.Recommendations.Diet,
		resp.Recommendations.Exercise,
		resp.Recommendations.Lifestyle,
		resp.Recommendations.MentalWellness,
	} {
		heading.Fprintln(w, strings.ToUpper(block.Title))
		for _, section := range block.Sections {
			fmt.Fprintf(w, "   %s\n", color.New(color.Bold).Sprint(section.Title))
			for _, item := range section.Items {
				fmt.Fprintf(w, "     - %s\n", item)
			}
		}
		fmt.Fprintln(w)
	}

	heading.Fprintln(w, "KEY MESSAGES")
	for _, m := range resp.KeyMessages {
		fmt.Fprintf(w, "   - %s\n", m)
	}
	fmt.Fprintln(w)
	return nil
}

// Value writes any value as JSON or YAML. Human output falls back to JSON.
func Value(w io.Writer, v any, format string) error {
	if format == FormatHuman {
		format = FormatJSON
	}
	return structured(w, v, format)
}

func structured(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeFlags(w io.Writer, heading *color.Color, f domain.BiomarkerFlags) {
	heading.Fprintln(w, "BIOMARKER FLAGS")
	for _, row := range []struct {
		name  string
		level domain.FlagLevel
	}{
		{"ESR", f.ESR}, {"CRP", f.CRP}, {"RF", f.RF}, {"Anti-CCP", f.AntiCCP},
	} {
		fmt.Fprintf(w, "   %-9s %s\n", row.name, flagColor(row.level).Sprint(row.level))
	}
	fmt.Fprintln(w)
}

func writeBreakdown(w io.Writer, heading *color.Color, breakdown []domain.ScoreComponent) {
	if len(breakdown) == 0 {
		return
	}
	heading.Fprintln(w, "SCORE BREAKDOWN")
	for _, c := range breakdown {
		fmt.Fprintf(w, "   %-13s %d x %d = %.2f\n", c.Factor, c.Points, c.Weight, c.Contribution)
	}
	fmt.Fprintln(w)
}

func riskLevelColor(riskColor string) *color.Color {
	switch riskColor {
	case "red":
		return color.New(color.FgRed, color.Bold)
	case "orange":
		return color.New(color.FgHiYellow, color.Bold)
	case "yellow":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// TierColor picks the terminal colour for a severity tier.
func TierColor(t domain.SeverityTier) *color.Color {
	switch t {
	case domain.TierSevereUrgent:
		return color.New(color.FgRed, color.Bold)
	case domain.TierSevere:
		return color.New(color.FgRed)
	case domain.TierModerate:
		return color.New(color.FgYellow)
	case domain.TierBorderline:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}

func flagColor(l domain.FlagLevel) *color.Color {
	switch l {
	case domain.FlagElevated:
		return color.New(color.FgRed)
	case domain.FlagBorderline:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func trendColor(trend string) *color.Color {
	switch domain.TrendDirection(trend) {
	case domain.TrendWorsened:
		return color.New(color.FgRed, color.Bold)
	case domain.TrendImproved:
		return color.New(color.FgGreen, color.Bold)
	default:
		return color.New(color.FgWhite, color.Bold)
	}
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
