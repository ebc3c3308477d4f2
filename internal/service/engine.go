package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ra-risk-server/internal/domain"
)

// Engine evaluates panels. It holds only read-only collaborators and is safe
// for concurrent use.
type Engine struct {
	adapter *ModelAdapter
	logger  *logrus.Logger
	now     func() time.Time
}

// NewEngine creates an engine around a model adapter.
func NewEngine(adapter *ModelAdapter, logger *logrus.Logger) *Engine {
	return &Engine{
		adapter: adapter,
		logger:  logger,
		now:     time.Now,
	}
}

// ModelAvailable reports whether a predictor is configured.
func (e *Engine) ModelAvailable() bool {
	return e.adapter.Available()
}

// ModelName returns the configured predictor's name.
func (e *Engine) ModelName() string {
	return e.adapter.Name()
}

// Assess runs flags, rule score, model and blend for one panel.
func (e *Engine) Assess(ctx context.Context, panel domain.BiomarkerPanel, lifestyle domain.Lifestyle) *domain.RiskAssessment {
	flags := ComputeFlags(panel)

	ruleScore, breakdown := RuleScore(flags, RuleInputs{
		Smoking:     lifestyle.Smoking,
		Drinking:    lifestyle.Drinking,
		Age:         panel.Age,
		RADiagnosed: lifestyle.RADiagnosed,
	})

	model := e.adapter.Probability(ctx, panel, flags)
	combined := Blend(ruleScore, model)

	assessment := &domain.RiskAssessment{
		ID:            uuid.New().String(),
		Panel:         panel,
		Flags:         flags,
		RuleScore:     ruleScore,
		Model:         model,
		CombinedScore: combined,
		Severity:      ClassifySeverity(combined),
		Breakdown:     breakdown,
		AssessedAt:    e.now().UTC(),
	}

	e.logger.WithFields(logrus.Fields(assessment.LogFields())).
		WithFields(logrus.Fields(panel.LogFields())).
		Debug("Assessed biomarker panel")

	return assessment
}

// Predict evaluates a single panel for the single-prediction view. Without a
// model the rule score stands in for the probability.
func (e *Engine) Predict(ctx context.Context, panel domain.BiomarkerPanel) *domain.Prediction {
	assessment := e.Assess(ctx, panel, domain.Lifestyle{})

	probability := assessment.Model.Probability
	ruleOnly := !assessment.Model.Available
	if ruleOnly {
		probability = assessment.RuleScore / 100
	}

	level := ClassifyRiskLevel(probability)

	e.logger.WithFields(logrus.Fields{
		"assessment_id": assessment.ID,
		"risk_level":    level.String(),
		"rule_only":     ruleOnly,
	}).Info("Completed single prediction")

	return &domain.Prediction{
		Assessment:       assessment,
		Probability:      probability,
		RuleOnly:         ruleOnly,
		Stage:            ClassifyPredictionStage(probability),
		RiskLevel:        level,
		BinaryPrediction: probability > 0.5,
		Messages:         PredictionMessages(panel, probability),
	}
}

// Compare evaluates both panels independently and compares them.
func (e *Engine) Compare(ctx context.Context, previous, current domain.BiomarkerPanel, monthsBetween float64) *domain.TrendResult {
	prev := e.Assess(ctx, previous, domain.Lifestyle{})
	curr := e.Assess(ctx, current, domain.Lifestyle{})

	result := CompareTrend(prev, curr, monthsBetween)

	e.logger.WithFields(logrus.Fields{
		"previous_assessment": prev.ID,
		"current_assessment":  curr.ID,
		"months_between":      monthsBetween,
		"probability_change":  result.ProbabilityChange,
		"trend":               string(result.OverallTrend),
	}).Info("Completed trend comparison")

	return result
}

// Recommend assesses the panel with lifestyle factors and selects guidance
// for the resulting tier.
func (e *Engine) Recommend(ctx context.Context, panel domain.BiomarkerPanel, lifestyle domain.Lifestyle) (*domain.RiskAssessment, domain.RecommendationSet) {
	assessment := e.Assess(ctx, panel, lifestyle)

	set := SelectRecommendations(domain.RecommendationContext{
		Tier:      assessment.Severity,
		Flags:     assessment.Flags,
		Age:       panel.Age,
		Lifestyle: lifestyle,
	})

	e.logger.WithFields(logrus.Fields{
		"assessment_id": assessment.ID,
		"severity":      assessment.Severity.String(),
	}).Info("Generated recommendations")

	return assessment, set
}
