package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/wiggles/internal/report"
)

// APIError is a non-2xx response from a progress server.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("progress: %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("progress: %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client implements Backend against a remote Server.
type Client struct {
	base *url.URL
	http *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse progress url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("progress url %q must be http or https", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LogGameAndAward posts a game log.
func (c *Client) LogGameAndAward(ctx context.Context, log report.GameLog) (report.Ack, error) {
	var ack report.Ack
	err := c.do(ctx, http.MethodPost, "/api/v1/games/log", nil, log, &ack)
	return ack, err
}

// Summary fetches the aggregated progress.
func (c *Client) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := c.do(ctx, http.MethodGet, "/api/v1/progress", nil, nil, &sum)
	return sum, err
}

// Recent fetches up to limit recent games.
func (c *Client) Recent(ctx context.Context, limit int) ([]GameEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Games []GameEntry `json:"games"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/games/recent", q, nil, &out)
	return out.Games, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.Path += path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var eb ErrorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Type != "" {
			apiErr.Type = eb.Type
			apiErr.Message = eb.Message
		}
		if apiErr.Type == ErrTypeValidation {
			apiErr.Err = report.ErrInvalidLog
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
