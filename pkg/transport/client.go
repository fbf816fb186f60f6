package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
)

// maxURLLength is the longest GET URL sent as-is. Longer requests are sent as
// POST with a method override header.
const maxURLLength = 4096

// Client is a JSON-over-HTTP client for the kintone REST API. It satisfies
// record.HTTPClient.
type Client struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// NewClient creates a new transport client
func NewClient(cfg *Config) (*Client, error) {
	// Apply defaults
	defaults := DefaultConfig()
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = defaults.TLSVerify
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}

	return &Client{
		config: cfg,
		client: cfg.NewHTTPClient(),
		logger: cfg.Logger.Named("transport"),
	}, nil
}

// Get sends params as a query string.
func (c *Client) Get(ctx context.Context, path string, params, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, params, result)
}

// Post sends params as a JSON body.
func (c *Client) Post(ctx context.Context, path string, params, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, params, result)
}

// Put sends params as a JSON body.
func (c *Client) Put(ctx context.Context, path string, params, result any) error {
	return c.doRequest(ctx, http.MethodPut, path, params, result)
}

// Delete sends params as a JSON body.
func (c *Client) Delete(ctx context.Context, path string, params, result any) error {
	return c.doRequest(ctx, http.MethodDelete, path, params, result)
}

// doRequest executes a request, retrying only responses the server rejected
// without processing (see Error.Retryable).
func (c *Client) doRequest(ctx context.Context, method, path string, params, result any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.RetryDelay
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := c.send(ctx, method, path, params, result)
		if err == nil {
			return nil
		}

		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Retryable() {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying request",
			"method", method,
			"path", path,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	return backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.config.MaxRetries)), ctx),
		notify,
	)
}

// send performs a single HTTP round trip.
func (c *Client) send(ctx context.Context, method, path string, params, result any) error {
	endpoint := c.config.BaseURL + path
	httpMethod := method
	methodOverride := false

	var body []byte
	if method == http.MethodGet {
		query, err := encodeQuery(params)
		if err != nil {
			return fmt.Errorf("failed to encode query: %w", err)
		}
		if encoded := query.Encode(); encoded != "" {
			endpoint += "?" + encoded
		}

		if len(endpoint) > maxURLLength {
			endpoint = c.config.BaseURL + path
			httpMethod = http.MethodPost
			methodOverride = true
		}
	}

	if (method != http.MethodGet || methodOverride) && params != nil {
		var err error
		body, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if methodOverride {
		req.Header.Set("X-HTTP-Method-Override", http.MethodGet)
	}

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	// Read response body
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"method_override", methodOverride,
		"duration", time.Since(startTime),
	)

	// Handle HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(method, path, resp.StatusCode, respBody)
	}

	// Decode response if result is provided
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
