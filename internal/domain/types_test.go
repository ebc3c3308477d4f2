package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGender(t *testing.T) {
	tests := []struct {
		input    string
		expected Gender
	}{
		{"male", GenderMale},
		{"Male", GenderMale},
		{" M ", GenderMale},
		{"1", GenderMale},
		{"female", GenderFemale},
		{"F", GenderFemale},
		{"0", GenderFemale},
		{"", GenderFemale},
		{"other", GenderFemale},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseGender(tt.input); got != tt.expected {
				t.Errorf("ParseGender(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBracketForAge(t *testing.T) {
	tests := []struct {
		age      float64
		expected AgeBracket
	}{
		{0, BracketPediatric},
		{17.99, BracketPediatric},
		{18, BracketAdult},
		{45, BracketAdult},
		{60, BracketAdult},
		{60.01, BracketSenior},
		{90, BracketSenior},
		{-3, BracketPediatric},
	}

	for _, tt := range tests {
		if got := BracketForAge(tt.age); got != tt.expected {
			t.Errorf("BracketForAge(%v) = %s, want %s", tt.age, got, tt.expected)
		}
	}
}

func TestParseSmokingStatus(t *testing.T) {
	tests := map[string]SmokingStatus{
		"Never":     SmokingNever,
		"no":        SmokingNever,
		"Former":    SmokingFormer,
		"QUIT":      SmokingFormer,
		"current":   SmokingCurrent,
		"Yes":       SmokingCurrent,
		"sometimes": SmokingNever,
	}

	for input, expected := range tests {
		if got := ParseSmokingStatus(input); got != expected {
			t.Errorf("ParseSmokingStatus(%q) = %d, want %d", input, got, expected)
		}
	}
}

func TestParseDrinkingStatus(t *testing.T) {
	tests := map[string]DrinkingStatus{
		"Never":    DrinkingNone,
		"moderate": DrinkingOccasional,
		"Regular":  DrinkingFrequent,
		"daily":    DrinkingNone,
	}

	for input, expected := range tests {
		if got := ParseDrinkingStatus(input); got != expected {
			t.Errorf("ParseDrinkingStatus(%q) = %d, want %d", input, got, expected)
		}
	}
}

func TestSeverityTierRank(t *testing.T) {
	ordered := []SeverityTier{TierLowNormal, TierBorderline, TierModerate, TierSevere, TierSevereUrgent}
	for i, tier := range ordered {
		if tier.Rank() != i {
			t.Errorf("%s rank = %d, want %d", tier, tier.Rank(), i)
		}
		if !tier.IsValid() {
			t.Errorf("%s should be valid", tier)
		}
	}

	if SeverityTier("Critical").IsValid() {
		t.Error("unknown tier should be invalid")
	}

	if _, err := ParseSeverityTier("Severe - Urgent"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseSeverityTier("urgent"); err != ErrInvalidTier {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}
}

func TestRiskLevelColor(t *testing.T) {
	tests := []struct {
		level RiskLevel
		color string
	}{
		{RiskHigh, "red"},
		{RiskModerate, "orange"},
		{RiskLow, "yellow"},
		{RiskVeryLow, "green"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if tt.level.Color() != tt.color {
				t.Errorf("Expected %s, got %s", tt.color, tt.level.Color())
			}
		})
	}
}

func TestBiomarkerFlagsSum(t *testing.T) {
	flags := BiomarkerFlags{ESR: FlagBorderline, CRP: FlagElevated, RF: FlagNormal, AntiCCP: FlagElevated}
	if flags.Sum() != 5 {
		t.Errorf("Expected sum 5, got %d", flags.Sum())
	}
	if !flags.Inflamed() || !flags.Autoimmune() {
		t.Error("expected both inflamed and autoimmune")
	}

	if (BiomarkerFlags{}).Inflamed() {
		t.Error("zero flags should not be inflamed")
	}
}

func TestTrendProbability(t *testing.T) {
	withModel := &RiskAssessment{CombinedScore: 40, Model: ModelResult{Probability: 0.7, Available: true}}
	if withModel.TrendProbability() != 0.7 {
		t.Errorf("Expected model probability, got %v", withModel.TrendProbability())
	}

	ruleOnly := &RiskAssessment{CombinedScore: 40}
	if ruleOnly.TrendProbability() != 0.4 {
		t.Errorf("Expected 0.4, got %v", ruleOnly.TrendProbability())
	}
	if ruleOnly.Model.ProbabilityPtr() != nil {
		t.Error("unavailable model should yield nil probability")
	}
}

func TestFlagLevelString(t *testing.T) {
	assert.Equal(t, "normal", FlagNormal.String())
	assert.Equal(t, "borderline", FlagBorderline.String())
	assert.Equal(t, "elevated", FlagElevated.String())
}
