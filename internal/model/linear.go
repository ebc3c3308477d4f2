// Package model loads the local predictor artifact: a standard scaler
// followed by a logistic regression over the ten engineered features.
package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ra-risk-server/internal/domain"
)

// Artifact is the on-disk form of a linear predictor.
type Artifact struct {
	Name       string           `yaml:"name"`
	Version    string           `yaml:"version"`
	Features   []string         `yaml:"features"`
	Scaler     ScalerParams     `yaml:"scaler"`
	Classifier ClassifierParams `yaml:"classifier"`
}

// ScalerParams holds per-feature mean and standard deviation.
type ScalerParams struct {
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
}

// ClassifierParams holds logistic regression weights.
type ClassifierParams struct {
	Coefficients []float64 `yaml:"coefficients"`
	Intercept    float64   `yaml:"intercept"`
}

// LinearPredictor implements domain.Predictor. It is immutable after Load
// and safe for concurrent use.
type LinearPredictor struct {
	name      string
	mean      domain.FeatureVector
	scale     domain.FeatureVector
	coef      domain.FeatureVector
	intercept float64
}

var errZeroScale = errors.New("scaler has a zero scale")

// Load reads and validates an artifact file.
func Load(path string) (*LinearPredictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an artifact.
func Parse(data []byte) (*LinearPredictor, error) {
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding model artifact: %w", err)
	}
	return New(a)
}

// New validates an artifact and builds a predictor from it.
func New(a Artifact) (*LinearPredictor, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	p := &LinearPredictor{
		name:      a.Name,
		intercept: a.Classifier.Intercept,
	}
	if p.name == "" {
		p.name = "linear"
	}
	if a.Version != "" {
		p.name += "@" + a.Version
	}

	copy(p.mean[:], a.Scaler.Mean)
	copy(p.scale[:], a.Scaler.Scale)
	copy(p.coef[:], a.Classifier.Coefficients)

	return p, nil
}

// Validate checks dimensions and feature order.
func (a Artifact) Validate() error {
	checks := map[string]int{
		"scaler.mean":             len(a.Scaler.Mean),
		"scaler.scale":            len(a.Scaler.Scale),
		"classifier.coefficients": len(a.Classifier.Coefficients),
	}
	for field, n := range checks {
		if n != domain.FeatureCount {
			return fmt.Errorf("%s has %d values, want %d", field, n, domain.FeatureCount)
		}
	}

	if len(a.Features) > 0 {
		if len(a.Features) != domain.FeatureCount {
			return fmt.Errorf("features has %d names, want %d", len(a.Features), domain.FeatureCount)
		}
		for i, name := range a.Features {
			if name != domain.FeatureNames[i] {
				return fmt.Errorf("feature %d is %q, want %q", i, name, domain.FeatureNames[i])
			}
		}
	}

	for i, s := range a.Scaler.Scale {
		if s == 0 {
			return fmt.Errorf("%w at feature %s", errZeroScale, domain.FeatureNames[i])
		}
	}

	return nil
}

// Name implements domain.Predictor.
func (p *LinearPredictor) Name() string {
	return p.name
}

// Transform standardizes each feature.
func (p *LinearPredictor) Transform(_ context.Context, features domain.FeatureVector) (domain.FeatureVector, error) {
	var out domain.FeatureVector
	for i := range features {
		out[i] = (features[i] - p.mean[i]) / p.scale[i]
	}
	return out, nil
}

// PredictProbability applies the logistic function to the linear score.
func (p *LinearPredictor) PredictProbability(_ context.Context, scaled domain.FeatureVector) (float64, error) {
	z := p.intercept
	for i := range scaled {
		z += p.coef[i] * scaled[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}
