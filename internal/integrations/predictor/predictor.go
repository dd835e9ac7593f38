package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mkravtsov/debtor-risk-service/internal/config"
	"github.com/mkravtsov/debtor-risk-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable marks every condition that makes the remote predictor
// unusable for a single call: transport failure, timeout, non-2xx status,
// or an out-of-contract payload. Callers check it with errors.Is and fall
// back to the local heuristic. The client never retries.
var ErrUnavailable = errors.New("risk predictor unavailable")

// Client handles integration with the external risk prediction service
type Client struct {
	url    string
	apiKey string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new predictor client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url:    cfg.PredictorURL,
		apiKey: cfg.PredictorAPIKey,
		client: &http.Client{
			Timeout: cfg.PredictorTimeout,
		},
		log: log,
	}
}

// Predict sends the debtor profile to the prediction endpoint and returns
// the validated response. All enumerated failure modes wrap ErrUnavailable;
// a request construction error does not, since it signals a configuration
// defect rather than remote unavailability.
func (c *Client) Predict(ctx context.Context, profile *models.RiskProfile) (*models.RiskPredictionResponse, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}
	c.log.Debugf("Predictor response: %s", string(body))

	// Required fields are decoded through pointers so an absent field is
	// distinguishable from a zero value.
	var raw struct {
		RiskScore       *int                `json:"riskScore"`
		RiskLevel       *string             `json:"riskLevel"`
		RiskFactors     []models.RiskFactor `json:"riskFactors"`
		Recommendations []string            `json:"recommendations"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	if raw.RiskScore == nil || raw.RiskLevel == nil {
		return nil, fmt.Errorf("%w: response is missing required fields", ErrUnavailable)
	}

	result := &models.RiskPredictionResponse{
		RiskScore:       *raw.RiskScore,
		RiskLevel:       *raw.RiskLevel,
		RiskFactors:     raw.RiskFactors,
		Recommendations: raw.Recommendations,
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrUnavailable, err)
	}

	return result, nil
}
