package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ra-risk-server/internal/domain"
)

func TestBlend(t *testing.T) {
	t.Run("Without_Model_Passes_Rule_Score", func(t *testing.T) {
		for _, rule := range []float64{0, 32.35, 100} {
			assert.Equal(t, rule, Blend(rule, domain.ModelResult{}))
		}
	})

	t.Run("With_Model", func(t *testing.T) {
		assert.InDelta(t, 63.5, Blend(50, domain.ModelResult{Probability: 0.8, Available: true}), 1e-9)
		assert.Equal(t, 0.0, Blend(0, domain.ModelResult{Probability: 0, Available: true}))
		assert.Equal(t, 100.0, Blend(100, domain.ModelResult{Probability: 1, Available: true}))
	})
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		score    float64
		expected domain.SeverityTier
	}{
		{0, domain.TierLowNormal},
		{34.99, domain.TierLowNormal},
		{35, domain.TierBorderline},
		{54.99, domain.TierBorderline},
		{55, domain.TierModerate},
		{70, domain.TierSevere},
		{84.99, domain.TierSevere},
		{85, domain.TierSevereUrgent},
		{100, domain.TierSevereUrgent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifySeverity(tt.score), "score %v", tt.score)
	}
}

func TestClassifySeverity_Monotonic(t *testing.T) {
	prev := ClassifySeverity(0)
	for s := 0.0; s <= 100; s += 0.25 {
		tier := ClassifySeverity(s)
		assert.GreaterOrEqual(t, tier.Rank(), prev.Rank(), "score %v", s)
		prev = tier
	}
}

func TestClassifyRiskLevel(t *testing.T) {
	assert.Equal(t, domain.RiskVeryLow, ClassifyRiskLevel(0.40))
	assert.Equal(t, domain.RiskLow, ClassifyRiskLevel(0.41))
	assert.Equal(t, domain.RiskLow, ClassifyRiskLevel(0.65))
	assert.Equal(t, domain.RiskModerate, ClassifyRiskLevel(0.66))
	assert.Equal(t, domain.RiskModerate, ClassifyRiskLevel(0.85))
	assert.Equal(t, domain.RiskHigh, ClassifyRiskLevel(0.851))

	prev := ClassifyRiskLevel(0)
	for p := 0.0; p <= 1; p += 0.005 {
		level := ClassifyRiskLevel(p)
		assert.GreaterOrEqual(t, level.Rank(), prev.Rank())
		prev = level
	}
}

func TestClassifyPredictionStage(t *testing.T) {
	tests := []struct {
		probability float64
		expected    domain.PredictionStage
	}{
		{0.5, domain.StageNormal},
		{0.51, domain.StageMild},
		{0.65, domain.StageMild},
		{0.66, domain.StageEarly},
		{0.81, domain.StageModerate},
		{0.90, domain.StageModerate},
		{0.91, domain.StageSevere},
		{0.96, domain.StageAdvanced},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyPredictionStage(tt.probability), "p=%v", tt.probability)
	}
}

func TestPredictionMessages(t *testing.T) {
	tests := []struct {
		name        string
		panel       domain.BiomarkerPanel
		probability float64
		expected    []string
	}{
		{
			name:        "advanced",
			panel:       adultPanel,
			probability: 0.97,
			expected:    []string{stageMessages[domain.StageAdvanced], adviceConsult},
		},
		{
			name:        "early stage with monitoring",
			panel:       adultPanel,
			probability: 0.7,
			expected:    []string{stageMessages[domain.StageEarly], adviceMonitor},
		},
		{
			name:        "adult all clear",
			panel:       domain.BiomarkerPanel{Age: 30, RF: 10, AntiCCP: 5, CRP: 3, ESR: 50},
			probability: 0.1,
			expected:    []string{normalNoIndicators, adviceMaintain},
		},
		{
			name:        "pediatric uses ESR",
			panel:       domain.BiomarkerPanel{Age: 12, ESR: 25, RF: 5, AntiCCP: 5},
			probability: 0.2,
			expected:    []string{normalMildElevation, adviceMaintain},
		},
		{
			name:        "elevated inflammation but probability above 0.45",
			panel:       domain.BiomarkerPanel{Age: 70, CRP: 12, RF: 30},
			probability: 0.47,
			expected:    []string{normalLowInflammation, adviceMaintain},
		},
		{
			name:        "exactly 0.5 is normal",
			panel:       domain.BiomarkerPanel{Age: 70, RF: 30},
			probability: 0.5,
			expected:    []string{normalLowInflammation, adviceMaintain},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PredictionMessages(tt.panel, tt.probability))
		})
	}
}
