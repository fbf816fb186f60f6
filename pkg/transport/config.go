package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Config contains configuration for the kintone HTTP transport.
//
// Example configuration (HCL, see pkg/config):
//
//	kintone {
//	  base_url = "https://example.cybozu.com"
//	  timeout  = "30s"
//	  headers = {
//	    "X-Cybozu-API-Token" = env("KINTONE_API_TOKEN")
//	  }
//	}
type Config struct {
	// BaseURL is the origin of the kintone domain
	// Example: "https://example.cybozu.com"
	BaseURL string `json:"baseUrl"`

	// Headers are sent with every request. Credentials are passed here;
	// how they are obtained is up to the caller.
	Headers map[string]string `json:"-"` // May carry tokens

	// TLSVerify controls TLS certificate verification
	// Set to false only for development/testing with self-signed certs
	TLSVerify *bool `json:"tlsVerify,omitempty"`

	// Timeout for API requests
	// Default: 30 seconds
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries for throttled or unavailable responses (429, 503)
	// Default: 3 (zero selects the default)
	MaxRetries int `json:"maxRetries,omitempty"`

	// RetryDelay is the initial backoff between retries
	// Default: 1 second
	RetryDelay time.Duration `json:"retryDelay,omitempty"`

	// Logger (optional)
	Logger hclog.Logger `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify:  &tlsVerify,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// Validate checks if the configuration is valid. All problems are reported.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.BaseURL == "" {
		result = multierror.Append(result, fmt.Errorf("base_url is required"))
	} else if parsedURL, err := url.Parse(c.BaseURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid base_url: %w", err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		result = multierror.Append(result,
			fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme))
	}

	if c.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive, got: %v", c.Timeout))
	}

	if c.MaxRetries < 0 {
		result = multierror.Append(result, fmt.Errorf("max_retries must be non-negative, got: %d", c.MaxRetries))
	}

	if c.RetryDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("retry_delay must be non-negative, got: %v", c.RetryDelay))
	}

	return result.ErrorOrNil()
}

// NewHTTPClient creates a configured HTTP client for this transport
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
