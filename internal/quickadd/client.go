// Package quickadd is a client for the AI Organiser quick-add edge function,
// the backend that stores notes.
package quickadd

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
)

// DefaultTimeout bounds a single call to the backend.
const DefaultTimeout = 10 * time.Second

// maxResponseSize caps how much of a backend response is read.
const maxResponseSize = 1 << 20

// APIKeyHeader carries the per-account integration token.
const APIKeyHeader = "x-api-key"

// ErrNotConfigured is returned when the function URL or anon key is missing.
var ErrNotConfigured = errors.New("quick-add backend is not configured")

// Note is the payload sent to the backend. Empty optional fields are omitted;
// an absent Project means the backend files the note into Inbox.
type Note struct {
	Text        string `json:"text"`
	SourceTitle string `json:"sourceTitle,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"`
	Project     string `json:"project,omitempty"`
}

// Response is a successful backend reply.
type Response struct {
	StatusCode int
	// Body is the decoded JSON value, or the raw text when the body is not JSON.
	Body any
}

// StatusError is returned for any backend status >= 400.
type StatusError struct {
	StatusCode int
	Body       any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("quick-add returned %d", e.StatusCode)
}

// Unauthorized reports whether the backend rejected the credential.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Client talks to the quick-add function. It is safe for concurrent use;
// the underlying http.Client pools connections across calls.
type Client struct {
	httpClient  *http.Client
	functionURL string
	anonKey     string
}

// Options configures a Client.
type Options struct {
	FunctionURL string
	AnonKey     string
	Timeout     time.Duration
	HTTPClient  *http.Client // optional; Timeout is applied when it has none
}

// NewClient creates a quick-add client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	} else if hc.Timeout == 0 {
		cp := *hc
		cp.Timeout = timeout
		hc = &cp
	}
	return &Client{
		httpClient:  hc,
		functionURL: strings.TrimSpace(opts.FunctionURL),
		anonKey:     strings.TrimSpace(opts.AnonKey),
	}
}

// Configured reports whether the shared infrastructure secret and URL are set.
func (c *Client) Configured() bool {
	return c != nil && c.functionURL != "" && c.anonKey != ""
}

// Add posts note on behalf of the account identified by apiKey.
// It makes exactly one attempt.
func (c *Client) Add(ctx context.Context, apiKey string, note Note) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return nil, fmt.Errorf("marshal note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.functionURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set(APIKeyHeader, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call quick-add: %w", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))

	// The status decides the outcome even when the body is cut short.
	if resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: decodeBody(raw)}
	}
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	return &Response{StatusCode: resp.StatusCode, Body: decodeBody(raw)}, nil
}

// decodeBody returns the JSON value in raw, or raw as a string.
func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}
