// API service for making raw HTTP requests to the segmentation service
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/satseg/internal/shared"
)

// maxProbeBody caps how much of a probe response is kept.
const maxProbeBody = 64 << 10

// APIService provides raw HTTP access to the segmentation service, used for health checks.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the segmentation service.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the service root requests are resolved against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse is a probe result: status, a bounded body and the round-trip time.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
	Latency    time.Duration
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get sends a GET to path under the base URL.
//
// Any HTTP status is a response; only a failed exchange is an error, wrapping [shared.ErrTransport].
// At most 64 KiB of the body is kept.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	probe := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		Latency:    time.Since(start),
	}

	if json.Valid(body) {
		probe.IsJSON = true
		_ = json.Unmarshal(body, &probe.JSONData)
	}

	return probe, nil
}
