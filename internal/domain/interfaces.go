package domain

import (
	"context"
)

// FeatureCount is the width of the predictor input vector.
const FeatureCount = 10

// FeatureVector is ordered [Age, Gender, ESR, CRP, RF, AntiCCP, ESR_flag,
// CRP_flag, RF_flag, AntiCCP_flag].
type FeatureVector [FeatureCount]float64

// FeatureNames labels each FeatureVector slot.
var FeatureNames = [FeatureCount]string{
	"Age", "Gender", "ESR", "CRP", "RF", "Anti-CCP",
	"ESR_flag", "CRP_flag", "RF_flag", "AntiCCP_flag",
}

// Predictor is the externally supplied scale-then-classify collaborator.
// Implementations must be safe for concurrent use.
type Predictor interface {
	Transform(ctx context.Context, features FeatureVector) (FeatureVector, error)
	PredictProbability(ctx context.Context, scaled FeatureVector) (float64, error)
	Name() string
}

// ProbabilityCache stores predictor output keyed by feature vector.
type ProbabilityCache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, probability float64)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetModelConfig() *ModelConfig
	GetCacheConfig() *CacheConfig
	GetFeedbackConfig() *FeedbackConfig
	GetLoggingConfig() *LoggingConfig
	Validate() error
}
