package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"briefcast/config"
)

// Client is the HTTP client for the remote Briefcast service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration

	mu        sync.RWMutex
	userEmail string
	premium   bool
}

// Options configures a Client; zero values fall back to defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	UserEmail string
	Premium   bool
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// NewClient creates a new gateway client
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		retries:    opts.Retries,
		backoff:    500 * time.Millisecond,
		userEmail:  opts.UserEmail,
		premium:    opts.Premium,
	}
}

// SetUser changes the identity sent with every request.
func (c *Client) SetUser(email string) {
	c.mu.Lock()
	c.userEmail = strings.TrimSpace(email)
	c.mu.Unlock()
}

// User returns the current identity.
func (c *Client) User() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userEmail
}

// SetPremium toggles the premium entitlement header.
func (c *Client) SetPremium(premium bool) {
	c.mu.Lock()
	c.premium = premium
	c.mu.Unlock()
}

type request struct {
	method  string
	path    string
	payload interface{}
	headers map[string]string
}

// do performs one request and returns the response with a 2xx status.
// Non-2xx responses are drained and converted into *APIError.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, r.path)

	var body io.Reader
	if r.payload != nil {
		jsonData, err := json.Marshal(r.payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if r.payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	if c.userEmail != "" {
		req.Header.Set(config.HeaderUserEmail, c.userEmail)
	}
	c.mu.RUnlock()
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Op: r.method + " " + r.path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			Op:     r.method + " " + r.path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(bodyBytes)),
		}
	}
	return resp, nil
}

// doJSON performs an idempotent request, retrying transient failures, and
// decodes the JSON response into result when it is non-nil.
func (c *Client) doJSON(ctx context.Context, r request, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		resp, err := c.do(ctx, r)
		if err != nil {
			lastErr = err
			if r.method == http.MethodGet && isRetryable(err) {
				continue
			}
			return err
		}

		defer resp.Body.Close()
		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	}
	return lastErr
}
