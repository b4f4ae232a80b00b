package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"termwatch/pkg/api"
)

// OpsClient calls a watchdog's ops endpoints.
type OpsClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpsClient creates a client for the watchdog at baseURL.
func NewOpsClient(baseURL string) *OpsClient {
	return &OpsClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// APIError represents an error response from the ops server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Probe sends GET to a probe path such as /healthz or /readyz.
func (c *OpsClient) Probe(path string) (*api.StatusResponse, error) {
	httpReq, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var result api.StatusResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}
