package service

import (
	"github.com/ra-risk-server/internal/domain"
)

var stageMessages = map[domain.PredictionStage]string{
	domain.StageAdvanced: "RA Positive (clinical case) - advanced stage RA",
	domain.StageSevere:   "Severe - multiple high inflammatory markers detected.",
	domain.StageModerate: "Moderate risk - consistent with moderate RA activity",
	domain.StageEarly:    "Borderline (possible early-stage RA)",
	domain.StageMild:     "Borderline - mild inflammation, early autoimmune signs",
}

const (
	normalNoIndicators    = "Normal - no indicators of rheumatoid activity."
	normalMildElevation   = "Normal - slightly elevated inflammation but low RA probability."
	normalLowInflammation = "Normal - overall low inflammatory response detected."

	adviceConsult  = "Recommendation: Consult a rheumatologist for further diagnostic confirmation."
	adviceMonitor  = "Recommendation: Periodic monitoring and lifestyle adjustment advised."
	adviceMaintain = "Recommendation: Maintain healthy lifestyle; no immediate RA concerns."
)

// PredictionMessages returns the headline and advice messages for a single
// prediction.
func PredictionMessages(p domain.BiomarkerPanel, probability float64) []string {
	stage := ClassifyPredictionStage(probability)

	headline, ok := stageMessages[stage]
	if !ok {
		headline = normalMessage(p, probability)
	}

	return []string{headline, adviceMessage(probability)}
}

func normalMessage(p domain.BiomarkerPanel, probability float64) string {
	switch {
	case withinNormalLimits(p):
		return normalNoIndicators
	case (p.ESR > 20 || p.CRP > 10) && probability < 0.45:
		return normalMildElevation
	default:
		return normalLowInflammation
	}
}

// withinNormalLimits checks the bracket-specific all-clear thresholds. The
// markers checked differ by bracket.
func withinNormalLimits(p domain.BiomarkerPanel) bool {
	switch p.Bracket() {
	case domain.BracketPediatric:
		return p.ESR < 10 && p.RF < 10 && p.AntiCCP < 20
	case domain.BracketAdult:
		return p.RF < 14 && p.AntiCCP < 20 && p.CRP < 6
	default:
		return p.RF < 20 && p.AntiCCP < 20 && p.CRP < 10
	}
}

func adviceMessage(probability float64) string {
	switch {
	case probability > 0.85:
		return adviceConsult
	case probability > 0.5:
		return adviceMonitor
	default:
		return adviceMaintain
	}
}
