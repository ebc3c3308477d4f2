package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ra-risk-server/internal/domain"
)

// InferenceClient calls a remote scaler+classifier service. It implements
// domain.Predictor.
type InferenceClient struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
}

// InferenceConfig represents configuration for the inference client
type InferenceConfig struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"`
	RateLimit float64       `json:"rate_limit"` // requests per second
	Burst     int           `json:"burst"`
}

type featuresPayload struct {
	Features []float64 `json:"features"`
}

type probabilityPayload struct {
	Probability *float64 `json:"probability"`
}

// NewInferenceClient creates a new inference client
func NewInferenceClient(config InferenceConfig) *InferenceClient {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 50
	}
	if config.Burst == 0 {
		config.Burst = 10
	}

	return &InferenceClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
	}
}

// Name implements domain.Predictor.
func (c *InferenceClient) Name() string {
	return "remote:" + c.baseURL
}

// Transform asks the service to scale the raw features.
func (c *InferenceClient) Transform(ctx context.Context, features domain.FeatureVector) (domain.FeatureVector, error) {
	var out featuresPayload
	if err := c.post(ctx, "/transform", featuresPayload{Features: features[:]}, &out); err != nil {
		return domain.FeatureVector{}, err
	}

	if len(out.Features) != domain.FeatureCount {
		return domain.FeatureVector{}, fmt.Errorf("transform returned %d features, want %d", len(out.Features), domain.FeatureCount)
	}

	var scaled domain.FeatureVector
	copy(scaled[:], out.Features)
	return scaled, nil
}

// PredictProbability asks the service for the positive-class probability.
func (c *InferenceClient) PredictProbability(ctx context.Context, scaled domain.FeatureVector) (float64, error) {
	var out probabilityPayload
	if err := c.post(ctx, "/predict_proba", featuresPayload{Features: scaled[:]}, &out); err != nil {
		return 0, err
	}
	if out.Probability == nil {
		return 0, fmt.Errorf("/predict_proba response has no probability")
	}
	return *out.Probability, nil
}

// Health checks the service's health endpoint.
func (c *InferenceClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *InferenceClient) post(ctx context.Context, path string, in, out any) error {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
