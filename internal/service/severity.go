package service

import (
	"github.com/ra-risk-server/internal/domain"
)

// ClassifySeverity maps a combined score onto the recommendation tiers.
func ClassifySeverity(combinedScore float64) domain.SeverityTier {
	switch {
	case combinedScore >= 85:
		return domain.TierSevereUrgent
	case combinedScore >= 70:
		return domain.TierSevere
	case combinedScore >= 55:
		return domain.TierModerate
	case combinedScore >= 35:
		return domain.TierBorderline
	default:
		return domain.TierLowNormal
	}
}

// ClassifyRiskLevel maps a probability onto the single-prediction levels.
func ClassifyRiskLevel(probability float64) domain.RiskLevel {
	switch {
	case probability > 0.85:
		return domain.RiskHigh
	case probability > 0.65:
		return domain.RiskModerate
	case probability > 0.40:
		return domain.RiskLow
	default:
		return domain.RiskVeryLow
	}
}

// ClassifyPredictionStage maps a probability onto the message bands. This is
// a separate scale from ClassifyRiskLevel and is not meant to agree with it.
func ClassifyPredictionStage(probability float64) domain.PredictionStage {
	switch {
	case probability > 0.95:
		return domain.StageAdvanced
	case probability > 0.90:
		return domain.StageSevere
	case probability > 0.80:
		return domain.StageModerate
	case probability > 0.65:
		return domain.StageEarly
	case probability > 0.50:
		return domain.StageMild
	default:
		return domain.StageNormal
	}
}
