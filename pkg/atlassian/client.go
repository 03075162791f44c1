// Package atlassian holds the REST plumbing shared by the Jira and
// Confluence clients: basic auth, JSON bodies and API errors.
package atlassian

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

	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept
const maxErrorBody = 64 << 10

// APIError is returned for non-2xx responses
type APIError struct {
	System     string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed: %d - %s", e.System, e.StatusCode, e.Body)
}

// Client performs authenticated JSON requests against one Atlassian site
type Client struct {
	system     string
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     logging.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimiter throttles requests through l, keyed by base URL
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client. system names the product in errors and logs.
func NewClient(system, baseURL, email, apiToken string, opts ...Option) *Client {
	c := &Client{
		system:     system,
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request. body, when non-nil, is encoded as JSON; out, when
// non-nil, receives the decoded response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return fmt.Errorf("%s rate limit: %w", c.system, err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.system, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.system, err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	c.logger.Debug("Executing request",
		logging.String("system", c.system),
		logging.String("http_method", method),
		logging.String("url", endpoint),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request %s %s: %w", c.system, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{System: c.system, StatusCode: resp.StatusCode, Body: string(raw)}
		c.logger.Warn("Request failed", logging.String("system", c.system), logging.Int("status", resp.StatusCode))
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s response: %w", c.system, err)
	}
	return nil
}
