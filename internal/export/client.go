package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bobarin/reelcut/internal/models"
)

// Client talks to the render backend that turns an export descriptor into
// an MP4.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

type startResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	FFmpeg bool   `json:"ffmpeg"`
}

// Health probes the render backend. A transport error means the backend is
// unreachable, which is reported as unavailable rather than failed.
func (c *Client) Health(ctx context.Context) models.RenderBackendHealth {
	body, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return models.RenderBackendHealth{}
	}
	var resp healthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.RenderBackendHealth{}
	}
	return models.RenderBackendHealth{
		Available: resp.Status == "ok",
		FFmpeg:    resp.FFmpeg,
	}
}

// Start submits an export descriptor and returns the backend's job id.
func (c *Client) Start(ctx context.Context, req models.ExportRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode export request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/export", payload)
	if err != nil {
		return "", fmt.Errorf("failed to start export: %w", err)
	}

	var resp startResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode export response: %w", err)
	}
	if resp.JobID == "" {
		return "", fmt.Errorf("render backend returned no job id")
	}
	return resp.JobID, nil
}

// Status fetches the current progress of a render job.
func (c *Client) Status(ctx context.Context, jobID string) (models.ExportJobStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/export/"+jobID+"/status", nil)
	if err != nil {
		return models.ExportJobStatus{}, fmt.Errorf("failed to fetch export status: %w", err)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.ExportJobStatus{}, fmt.Errorf("failed to decode export status: %w", err)
	}
	return models.ExportJobStatus{
		JobID:    resp.JobID,
		Status:   models.ExportJobState(resp.Status),
		Progress: resp.Progress,
		Message:  resp.Message,
		Error:    resp.Error,
	}, nil
}

// Cancel asks the backend to abort a render job. Cancelling a finished job
// is not an error.
func (c *Client) Cancel(ctx context.Context, jobID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/api/export/"+jobID, nil); err != nil {
		return fmt.Errorf("failed to cancel export: %w", err)
	}
	return nil
}

// DownloadURL is where the finished MP4 can be fetched from.
func (c *Client) DownloadURL(jobID string) string {
	return c.baseURL + "/api/export/" + jobID + "/download"
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("render backend returned status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
