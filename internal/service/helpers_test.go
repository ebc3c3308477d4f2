package service

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/ra-risk-server/internal/domain"
)

// MockPredictor is a mock implementation of the domain.Predictor interface
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Transform(ctx context.Context, features domain.FeatureVector) (domain.FeatureVector, error) {
	args := m.Called(ctx, features)
	return args.Get(0).(domain.FeatureVector), args.Error(1)
}

func (m *MockPredictor) PredictProbability(ctx context.Context, scaled domain.FeatureVector) (float64, error) {
	args := m.Called(ctx, scaled)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockPredictor) Name() string {
	return "mock"
}

// fixedPredictor returns the same probability for every input.
type fixedPredictor struct {
	probability float64
}

func (f fixedPredictor) Transform(_ context.Context, features domain.FeatureVector) (domain.FeatureVector, error) {
	return features, nil
}

func (f fixedPredictor) PredictProbability(context.Context, domain.FeatureVector) (float64, error) {
	return f.probability, nil
}

func (f fixedPredictor) Name() string {
	return "fixed"
}

// panelPredictor returns a probability chosen by the raw ESR value.
type panelPredictor map[float64]float64

func (p panelPredictor) Transform(_ context.Context, features domain.FeatureVector) (domain.FeatureVector, error) {
	return features, nil
}

func (p panelPredictor) PredictProbability(_ context.Context, scaled domain.FeatureVector) (float64, error) {
	return p[scaled[2]], nil
}

func (p panelPredictor) Name() string {
	return "by-esr"
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]float64
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]float64)}
}

func (c *mapCache) Get(_ context.Context, key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, p float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = p
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.FatalLevel)
	return logger
}
