package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nemanja-m/gofarm/internal/orchestrator/core"
)

// HTTPWorkerClient speaks the worker's REST surface.
type HTTPWorkerClient struct {
	client *http.Client
}

func NewHTTPWorkerClient(timeout time.Duration) *HTTPWorkerClient {
	return &HTTPWorkerClient{
		client: &http.Client{Timeout: timeout},
	}
}

type submitRequest struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type submitResponse struct {
	Handle string `json:"handle"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *HTTPWorkerClient) Submit(ctx context.Context, worker string, r core.Range) (string, error) {
	body, err := json.Marshal(submitRequest{From: r.From, To: r.To})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(worker, "/api/work"), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", statusError(res)
	}

	var resp submitResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("invalid submit response: %w", err)
	}
	if resp.Handle == "" {
		return "", fmt.Errorf("worker returned an empty handle")
	}
	return resp.Handle, nil
}

func (c *HTTPWorkerClient) Probe(ctx context.Context, worker, handle string) (core.ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(worker, "/api/work/"+url.PathEscape(handle)), nil)
	if err != nil {
		return "", err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	switch res.StatusCode {
	case http.StatusOK:
		return core.ProbeCompleted, nil
	case http.StatusAccepted:
		return core.ProbeRunning, nil
	case http.StatusNotFound:
		return core.ProbeNotFound, nil
	default:
		return "", fmt.Errorf("worker http %d", res.StatusCode)
	}
}

func endpoint(worker, path string) string {
	return strings.TrimRight(worker, "/") + path
}

func statusError(res *http.Response) error {
	var resp errorResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&resp); err == nil && resp.Error != "" {
		if resp.Message != "" {
			return fmt.Errorf("worker http %d: %s: %s", res.StatusCode, resp.Error, resp.Message)
		}
		return fmt.Errorf("worker http %d: %s", res.StatusCode, resp.Error)
	}
	return fmt.Errorf("worker http %d", res.StatusCode)
}
