// Package client is a typed HTTP client for the dayplan REST API.
//
// Failures are classified into a small taxonomy (see Kind); transient kinds
// are retried automatically with exponential backoff before the caller sees
// an error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 2
	defaultBaseBackoff = 1000 * time.Millisecond
	defaultMaxBackoff  = 10000 * time.Millisecond
)

// Options tune the client. The zero value of every field means "use the
// default".
type Options struct {
	// HTTPClient overrides the underlying transport.
	HTTPClient *http.Client
	// UserID is sent as the X-User-ID header when non-zero. Left unset the
	// server resolves the installation's default owner.
	UserID uint
	// MaxRetries is the number of automatic retries after a retryable
	// failure. Zero means the default of 2; negative disables retries.
	MaxRetries int
	// BaseBackoff is the delay before the first retry; it doubles per
	// attempt up to MaxBackoff.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Client talks to one dayplan server.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	userID      uint
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// New builds a client for the server at baseURL. opts may be nil.
func New(baseURL string, opts *Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts == nil {
		opts = &Options{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	maxRetries := opts.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = defaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}

	baseBackoff := opts.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}
	maxBackoff := opts.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		userID:      opts.UserID,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
	}, nil
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Me returns the identity the server resolves for this client.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MePatch updates only the profile fields that are set. A TelegramChatID of
// 0 unlinks the chat and stops notifications.
type MePatch struct {
	Name           *string `json:"name,omitempty"`
	Timezone       *string `json:"timezone,omitempty"`
	TelegramChatID *int64  `json:"telegram_chat_id,omitempty"`
}

// UpdateMe adjusts the resolved user's profile.
func (c *Client) UpdateMe(ctx context.Context, patch MePatch) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/api/v1/me", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// do runs one request with automatic retries for transient failures.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.doOnce(ctx, method, path, body, out)
		if err == nil {
			return nil
		}

		lastErr = err
		if !Classify(err).Retryable() {
			return err
		}
	}
	return lastErr
}

// backoff doubles per attempt: base, 2*base, 4*base, capped.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseBackoff * time.Duration(1<<(attempt-1))
	if d > c.maxBackoff {
		d = c.maxBackoff
	}
	return d
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatUint(uint64(c.userID), 10))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return apiErrorFrom(resp.StatusCode, raw)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiErrorFrom decodes the server's error body, falling back to the status
// text when the body is not the expected shape.
func apiErrorFrom(status int, body []byte) error {
	apiErr := ApiError{Status: status, Message: http.StatusText(status)}
	var parsed ApiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
	}
	if status == http.StatusNotFound {
		return &NotFoundError{ApiError: apiErr}
	}
	return &apiErr
}
