package service

import (
	"math"

	"github.com/ra-risk-server/internal/domain"
)

// Rule score weights.
const (
	inflammationWeight = 3
	smokingWeight      = 2
	drinkingWeight     = 1
	ageWeight          = 2
	diagnosisWeight    = 4

	// ruleScoreDenominator is 8*3 + 2*2 + 2 + 4. It is fixed; the true
	// weighted maximum is higher and the result is clamped at 100.
	ruleScoreDenominator = 34.0
)

// RuleInputs are the non-flag inputs of the rule score.
type RuleInputs struct {
	Smoking     domain.SmokingStatus
	Drinking    domain.DrinkingStatus
	Age         float64
	RADiagnosed bool
}

// AgePoints is 0 below 45, 1 from 45 to 60 inclusive and 2 above 60.
func AgePoints(age float64) int {
	switch {
	case age > 60:
		return 2
	case age >= 45:
		return 1
	default:
		return 0
	}
}

// RuleScore returns the weighted rule score in [0,100] together with the
// per-factor breakdown.
func RuleScore(flags domain.BiomarkerFlags, in RuleInputs) (float64, []domain.ScoreComponent) {
	ra := 0
	if in.RADiagnosed {
		ra = 1
	}

	breakdown := []domain.ScoreComponent{
		component("inflammation", flags.Sum(), inflammationWeight),
		component("smoking", in.Smoking.Points(), smokingWeight),
		component("drinking", in.Drinking.Points(), drinkingWeight),
		component("age", AgePoints(in.Age), ageWeight),
		component("ra_diagnosis", ra, diagnosisWeight),
	}

	base := 0
	for _, c := range breakdown {
		base += c.Points * c.Weight
	}

	return math.Min(100, Round2(float64(base)/ruleScoreDenominator*100)), breakdown
}

func component(factor string, points, weight int) domain.ScoreComponent {
	return domain.ScoreComponent{
		Factor:       factor,
		Points:       points,
		Weight:       weight,
		Contribution: Round2(float64(points*weight) / ruleScoreDenominator * 100),
	}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds half away from zero to one decimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round4 rounds half away from zero to four decimals.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
