package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/healops/remedy-engine/internal/models"
	"github.com/healops/remedy-engine/internal/utils"
)

// HTTPCollector polls an external collector endpoint for the latest sample.
type HTTPCollector struct {
	baseURL    string
	samplePath string
	httpClient *http.Client
}

// NewHTTPCollector constructs a client targeting the configured collector.
func NewHTTPCollector(baseURL, samplePath string, timeout time.Duration) *HTTPCollector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPCollector{
		baseURL:    strings.TrimRight(baseURL, "/"),
		samplePath: samplePath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Next fetches the latest sample from the collector.
func (c *HTTPCollector) Next(ctx context.Context) (models.Sample, error) {
	if c == nil || c.baseURL == "" {
		return models.Sample{}, utils.NewAppError("collector", "base URL not configured", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.samplePath, nil)
	if err != nil {
		return models.Sample{}, utils.NewAppError("collector", "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Sample{}, utils.NewAppError("collector", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Sample{}, utils.NewAppError("collector", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var payload struct {
		Timestamp string             `json:"timestamp"`
		Metrics   map[string]float64 `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Sample{}, utils.NewAppError("collector", "decode response", err)
	}

	ts := time.Now().UTC()
	if payload.Timestamp != "" {
		parsed, err := utils.ParseRFC3339(payload.Timestamp)
		if err != nil {
			return models.Sample{}, utils.NewAppError("collector", "bad timestamp", err)
		}
		ts = parsed
	}
	if payload.Metrics == nil {
		payload.Metrics = map[string]float64{}
	}

	return models.Sample{Timestamp: ts, Metrics: payload.Metrics}, nil
}
