// Package remote uploads results and progress to a keytutor backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/keytutor/internal/model"
)

const defaultTimeout = 10 * time.Second

// ErrDisabled is returned when no token is configured.
var ErrDisabled = errors.New("sync is not configured")

// envelope is the response body shape of every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is a best-effort REST client. The zero value is disabled.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// New returns a client for endpoint authenticated with token.
func New(endpoint, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether both endpoint and token are set.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != "" && c.token != ""
}

// SaveResult uploads one finished session.
func (c *Client) SaveResult(ctx context.Context, r model.Result) error {
	return c.post(ctx, "/typing-results", r)
}

// SyncProgress uploads the full progress snapshot.
func (c *Client) SyncProgress(ctx context.Context, p model.Progress) error {
	return c.post(ctx, "/sync-progress", p)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && env.Message != "" {
			return fmt.Errorf("unexpected status %s: %s", resp.Status, env.Message)
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !env.Success {
		if env.Message == "" {
			return errors.New("backend rejected request")
		}
		return fmt.Errorf("backend rejected request: %s", env.Message)
	}
	return nil
}
