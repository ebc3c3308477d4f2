package service

import (
	"github.com/ra-risk-server/internal/domain"
)

// Blend weights. The rule score is trusted slightly more than the model.
const (
	ruleBlendWeight  = 0.55
	modelBlendWeight = 0.45
)

// Blend combines the rule score with the model probability. Without a model
// the rule score passes through unchanged.
func Blend(ruleScore float64, model domain.ModelResult) float64 {
	if !model.Available {
		return ruleScore
	}
	return Round2((ruleBlendWeight*(ruleScore/100) + modelBlendWeight*model.Probability) * 100)
}
