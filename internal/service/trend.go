package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ra-risk-server/internal/domain"
)

// Narrative thresholds.
const (
	significantProbabilityShift = 0.15
	esrShift                    = 10
	crpShift                    = 5
)

const (
	trendIncreased         = "Your RA risk has significantly increased since your last visit."
	trendIncreasedFollowUp = "This indicates possible disease progression."
	trendReduced           = "Your RA risk has reduced noticeably."
	trendReducedFollowUp   = "This suggests improvement or good response to treatment."
	trendStable            = "RA risk remains relatively stable with mild fluctuations."

	inflammationIncreased = "Inflammation markers have increased - monitor closely."
	inflammationDecreased = "Inflammation markers have decreased - good progress."
	inflammationStable    = "Inflammation remains stable."
)

// PercentChange returns the change from old to new in percent, rounded to
// two decimals. A zero baseline yields 0.
func PercentChange(oldValue, newValue float64) float64 {
	if oldValue == 0 {
		return 0
	}
	return Round2((newValue - oldValue) / oldValue * 100)
}

// CompareTrend compares two independently evaluated assessments taken
// monthsBetween apart.
func CompareTrend(prev, curr *domain.RiskAssessment, monthsBetween float64) *domain.TrendResult {
	prevProb := prev.TrendProbability()
	currProb := curr.TrendProbability()

	return &domain.TrendResult{
		Previous:            prev,
		Current:             curr,
		MonthsBetween:       monthsBetween,
		PreviousProbability: Round2(prevProb * 100),
		CurrentProbability:  Round2(currProb * 100),
		ProbabilityChange:   PercentChange(prevProb, currProb),
		BiomarkerChanges:    biomarkerChanges(prev.Panel, curr.Panel),
		Interpretation:      interpretTrend(prevProb, currProb, prev.Panel, curr.Panel),
		OverallTrend:        OverallTrend(prevProb, currProb),
	}
}

// OverallTrend is a strict comparison with no tolerance band.
func OverallTrend(prevProb, currProb float64) domain.TrendDirection {
	switch {
	case currProb < prevProb:
		return domain.TrendImproved
	case currProb > prevProb:
		return domain.TrendWorsened
	default:
		return domain.TrendStable
	}
}

func interpretTrend(prevProb, currProb float64, prev, curr domain.BiomarkerPanel) []string {
	var out []string

	switch {
	case currProb-prevProb > significantProbabilityShift:
		out = append(out, trendIncreased, trendIncreasedFollowUp)
	case prevProb-currProb > significantProbabilityShift:
		out = append(out, trendReduced, trendReducedFollowUp)
	default:
		out = append(out, trendStable)
	}

	switch {
	case curr.ESR > prev.ESR+esrShift || curr.CRP > prev.CRP+crpShift:
		out = append(out, inflammationIncreased)
	case curr.ESR < prev.ESR-esrShift || curr.CRP < prev.CRP-crpShift:
		out = append(out, inflammationDecreased)
	default:
		out = append(out, inflammationStable)
	}

	return out
}

func biomarkerChanges(prev, curr domain.BiomarkerPanel) []domain.BiomarkerChange {
	pairs := []struct {
		name          string
		before, after float64
	}{
		{"ESR", prev.ESR, curr.ESR},
		{"CRP", prev.CRP, curr.CRP},
		{"RF", prev.RF, curr.RF},
		{"Anti-CCP", prev.AntiCCP, curr.AntiCCP},
	}

	out := make([]domain.BiomarkerChange, 0, len(pairs))
	for _, p := range pairs {
		pct := PercentChange(p.before, p.after)
		out = append(out, domain.BiomarkerChange{
			Name:          p.name,
			Previous:      p.before,
			Current:       p.after,
			PercentChange: pct,
			Change:        fmt.Sprintf("%s → %s (%s%%)", FormatDecimal(p.before), FormatDecimal(p.after), FormatDecimal(pct)),
		})
	}
	return out
}

// FormatDecimal prints the shortest representation that round-trips and
// always keeps one decimal place, so 25 prints as "25.0".
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// TrendSummary renders the multi-line summary of a comparison.
func TrendSummary(t *domain.TrendResult) string {
	return fmt.Sprintf(
		"First Appointment RA Probability: %s%%\nCurrent Appointment RA Probability: %s%%\nOverall Trend: %s\nReport generation complete.",
		FormatDecimal(t.PreviousProbability), FormatDecimal(t.CurrentProbability), t.OverallTrend,
	)
}
