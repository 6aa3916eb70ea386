// Package insight talks to the external AI-analysis collaborator. Any
// failure surfaces as domain.ErrAnalysisUnavailable and never blocks the
// quiz, card, or share flows.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"iqboard-service/internal/domain"
)

// Client posts quiz breakdowns to the analysis endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient builds a client for the collaborator's analyze endpoint.
func NewClient(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient, endpoint: endpoint}
}

// Analyze requests textual feedback for a completed session.
func (c *Client) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.Analysis, error) {
	if c.endpoint == "" {
		return domain.Analysis{}, fmt.Errorf("%w: no endpoint configured", domain.ErrAnalysisUnavailable)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: marshal request: %v", domain.ErrAnalysisUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrAnalysisUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrAnalysisUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Analysis{}, fmt.Errorf("%w: status %d", domain.ErrAnalysisUnavailable, resp.StatusCode)
	}

	var analysis domain.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: decode response: %v", domain.ErrAnalysisUnavailable, err)
	}
	return analysis, nil
}
