package external

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/ra-risk-server/internal/domain"
)

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	MaxRequests uint32        `json:"max_requests"`
	Interval    time.Duration `json:"interval"`
	Timeout     time.Duration `json:"timeout"`
}

// BreakerPredictor wraps a predictor so repeated failures stop reaching it
// until the breaker half-opens again.
type BreakerPredictor struct {
	inner   domain.Predictor
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerPredictor creates a circuit-breaking predictor
func NewBreakerPredictor(inner domain.Predictor, config CircuitBreakerConfig, logger *logrus.Logger) *BreakerPredictor {
	if config.MaxRequests == 0 {
		config.MaxRequests = 5
	}
	if config.Interval == 0 {
		config.Interval = 30 * time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Predictor circuit breaker changed state")
		},
	})

	return &BreakerPredictor{inner: inner, breaker: breaker}
}

// Name implements domain.Predictor.
func (b *BreakerPredictor) Name() string {
	return b.inner.Name()
}

// State exposes the breaker state for health reporting.
func (b *BreakerPredictor) State() gobreaker.State {
	return b.breaker.State()
}

// Transform implements domain.Predictor.
func (b *BreakerPredictor) Transform(ctx context.Context, features domain.FeatureVector) (domain.FeatureVector, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Transform(ctx, features)
	})
	if err != nil {
		return domain.FeatureVector{}, err
	}
	return out.(domain.FeatureVector), nil
}

// PredictProbability implements domain.Predictor.
func (b *BreakerPredictor) PredictProbability(ctx context.Context, scaled domain.FeatureVector) (float64, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.PredictProbability(ctx, scaled)
	})
	if err != nil {
		return 0, err
	}
	return out.(float64), nil
}
