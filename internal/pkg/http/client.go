package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	nrpkg "github.com/givehub/payments/internal/pkg/newrelic"
)

// Client is a timeout-bounded JSON HTTP client for external services
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient(serviceURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		BaseURL: serviceURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Response is a decoded JSON response with its HTTP status
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into out
func (r *Response) Decode(out interface{}) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// PostJSON sends a JSON POST to BaseURL+path with the given headers.
// Transport errors (including context deadline) come back unwrapped so the
// caller can classify them.
func (c *Client) PostJSON(ctx context.Context, path string, headers map[string]string, body interface{}) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, headers, payload)
}

// GetJSON sends a GET to BaseURL+path with the given headers
func (c *Client) GetJSON(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, headers, nil)
}

// PostRaw sends a pre-serialized body, used when the payload was signed and
// must go over the wire byte-identical to what was hashed.
func (c *Client) PostRaw(ctx context.Context, path string, headers map[string]string, payload []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, headers, payload)
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, payload []byte) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := nrpkg.InstrumentHTTPRequest(ctx, req, func() (*http.Response, error) {
		return c.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
