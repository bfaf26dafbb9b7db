package fjump

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const userAgent = "fjsync/0.1"

// Upload timeout escalation bounds. An upload starts with a request timeout
// of uploadBaseTimeout; each timed-out attempt multiplies it by
// uploadTimeoutFactor. Once the timeout exceeds uploadMaxTimeout the upload
// fails permanently with ErrTimeout.
const (
	uploadBaseTimeout   = 1000 * time.Second
	uploadMaxTimeout    = 10000 * time.Second
	uploadTimeoutFactor = 10
)

// Client is an HTTP client for the FileJump API. It handles request
// construction, bearer-token authentication, and error classification.
// API errors (non-success statuses) are permanent and never retried; the
// only retried condition is an upload timeout, which escalates the request
// timeout (see Upload).
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *slog.Logger

	// Timeout escalation bounds for Upload. Tests shrink these to keep
	// timeout-path tests fast.
	baseTimeout time.Duration
	maxTimeout  time.Duration
}

// NewClient creates a FileJump API client. baseURL is the service root,
// e.g. "https://app.filejump.com/api/v1/". token may be empty until Login
// or SetToken is called.
func NewClient(baseURL string, httpClient *http.Client, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		token:       token,
		logger:      logger,
		baseTimeout: uploadBaseTimeout,
		maxTimeout:  uploadMaxTimeout,
	}
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do executes a JSON request against the API and enforces the expected
// status code. The caller is responsible for closing the response body on
// success. Any other status is classified into an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, wantStatus int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("fjump: creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fjump: %s %s: %w", method, path, err)
	}

	if resp.StatusCode != wantStatus {
		errBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if readErr != nil {
			errBody = []byte("(failed to read response body)")
		}

		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(errBody),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	c.logger.Debug("request succeeded",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return resp, nil
}

// drainBody reads a response body to EOF so the connection can be reused.
func drainBody(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("fjump: draining response body: %w", err)
	}

	return nil
}
