// Package api provides the HTTP client for the workdeck backend.
//
// All endpoints speak JSON. The client reports non-2xx responses as
// *StatusError carrying the status code and response body, and treats a
// 2xx response with an empty or non-JSON body as success with no payload.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workdeck/internal/logging"
)

// Client issues JSON requests against a single backend base URL.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logging.Logger
}

// New creates a client rooted at baseURL. The base URL must be non-empty
// and parseable; a missing one is a configuration mistake that should
// have failed at startup. No request timeout is set; cancellation is the
// caller's context.
func New(baseURL string, log *logging.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	if log == nil {
		log = logging.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		log:     log,
	}, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes one JSON request. A non-nil body is JSON-encoded. Headers
// default to Content-Type: application/json; entries in hdr override the
// defaults. Responses outside 2xx come back as *StatusError. A 2xx with
// an empty or non-JSON body returns (nil, nil).
func (c *Client) Do(ctx context.Context, method, path string, body any, hdr http.Header) (json.RawMessage, error) {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for key, values := range hdr {
		req.Header[http.CanonicalHeaderKey(key)] = values
	}

	c.log.Debug(ctx, "api request",
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(data)),
		}
		c.log.Warn(ctx, "api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, statusErr
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		// Some endpoints answer 2xx with no payload or a non-JSON one;
		// that is success with nothing to decode.
		return nil, nil
	}

	return json.RawMessage(trimmed), nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, body, nil)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}
