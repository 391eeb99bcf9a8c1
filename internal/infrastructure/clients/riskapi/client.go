package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/pkg/config"
)

// Client calls the separately deployed denial-risk scoring service over
// its request/response interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure Client implements DenialRiskProvider
var _ providers.DenialRiskProvider = (*Client)(nil)

// NewClient creates a new scoring service client.
func NewClient(cfg *config.RiskAPIConfig) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("risk scoring service base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Score posts a flattened claim-feature record and returns the predicted
// denial probability.
func (c *Client) Score(ctx context.Context, features entities.ClaimFeatures) (*entities.DenialRiskScore, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("risk scoring request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("risk scoring service returned status %d: %s", resp.StatusCode, payload)
	}

	var score entities.DenialRiskScore
	if err := json.NewDecoder(resp.Body).Decode(&score); err != nil {
		return nil, fmt.Errorf("failed to decode risk score: %w", err)
	}
	return &score, nil
}
