package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ra-risk-server/internal/domain"
)

// ModelAdapter turns a panel into a model probability. A nil predictor or a
// failing one yields an unavailable result, never an error.
type ModelAdapter struct {
	predictor domain.Predictor
	cache     domain.ProbabilityCache
	logger    *logrus.Logger
}

// NewModelAdapter creates an adapter. predictor and cache may be nil.
func NewModelAdapter(predictor domain.Predictor, cache domain.ProbabilityCache, logger *logrus.Logger) *ModelAdapter {
	return &ModelAdapter{
		predictor: predictor,
		cache:     cache,
		logger:    logger,
	}
}

// Available reports whether a predictor is configured.
func (a *ModelAdapter) Available() bool {
	return a.predictor != nil
}

// Name returns the predictor name or "none".
func (a *ModelAdapter) Name() string {
	if a.predictor == nil {
		return "none"
	}
	return a.predictor.Name()
}

// Probability evaluates the panel. Flags must be the flags of the same panel.
func (a *ModelAdapter) Probability(ctx context.Context, panel domain.BiomarkerPanel, flags domain.BiomarkerFlags) domain.ModelResult {
	if a.predictor == nil {
		return domain.ModelResult{Available: false}
	}

	features := FeatureVector(panel, flags)
	key := featureKey(features)

	if a.cache != nil {
		if p, ok := a.cache.Get(ctx, key); ok {
			return domain.ModelResult{Probability: p, Available: true, Source: a.predictor.Name()}
		}
	}

	p, err := a.predict(ctx, features)
	if err != nil {
		a.logger.WithError(err).WithField("predictor", a.predictor.Name()).Warn("Predictor failed, falling back to rule score")
		return domain.ModelResult{Available: false}
	}

	if a.cache != nil {
		a.cache.Set(ctx, key, p)
	}

	return domain.ModelResult{Probability: p, Available: true, Source: a.predictor.Name()}
}

func (a *ModelAdapter) predict(ctx context.Context, features domain.FeatureVector) (p float64, err error) {
	// A panicking predictor is treated like a failing one.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predictor panic: %v", r)
		}
	}()

	scaled, err := a.predictor.Transform(ctx, features)
	if err != nil {
		return 0, fmt.Errorf("transform: %w", err)
	}

	p, err = a.predictor.PredictProbability(ctx, scaled)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}

	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: %v", domain.ErrProbabilityOutOfRange, p)
	}

	return p, nil
}

// featureKey is a stable hash of the exact feature bits.
func featureKey(features domain.FeatureVector) string {
	h := sha256.New()
	var buf [8]byte
	for _, f := range features {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
