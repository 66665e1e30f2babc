package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"
)

// Error variables for HTTP client errors
var (
	// ErrMaxRetriesExceeded is returned when all retry attempts have failed
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	// ErrRequestTimeout is returned when a request times out
	ErrRequestTimeout = errors.New("request timeout")
	// ErrUnexpectedStatus is returned for a non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// envVarPattern matches ${VAR_NAME} syntax for environment variable substitution
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// defaultUserAgent identifies toolwatch to the sources it queries
const defaultUserAgent = "toolwatch/1.0"

// RetryConfig holds configuration for retry behavior.
// The weekly batch cadence makes retries unnecessary by default, so the
// pipeline runs with MaxRetries 0; the knob exists so a policy can be
// plugged in without touching the connectors.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 0)
	MaxRetries int
	// BaseDelay is the initial delay before first retry (default: 1s)
	BaseDelay time.Duration
	// MaxDelay is the maximum delay between retries (default: 4s)
	MaxDelay time.Duration
	// Timeout is the timeout for each individual request (default: 10s)
	Timeout time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 0,
		BaseDelay:  1 * time.Second,
		MaxDelay:   4 * time.Second,
		Timeout:    10 * time.Second,
	}
}

// Client wraps an HTTP client with timeout and optional retry logic.
// All connector network calls go through it.
type Client struct {
	client *http.Client
	config RetryConfig
	// delayFunc allows overriding the delay function for testing
	delayFunc func(time.Duration)
	// defaultHeaders are headers applied to all requests
	defaultHeaders map[string]string
}

// NewClient creates a new HTTP client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultRetryConfig())
}

// NewClientWithConfig creates a new HTTP client with custom configuration.
func NewClientWithConfig(config RetryConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config:    config,
		delayFunc: time.Sleep,
		defaultHeaders: map[string]string{
			"User-Agent": defaultUserAgent,
		},
	}
}

// SetHTTPClient sets a custom underlying HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.client = client
}

// SetDelayFunc sets a custom delay function (useful for testing).
func (c *Client) SetDelayFunc(fn func(time.Duration)) {
	c.delayFunc = fn
}

// SetDefaultHeaders sets headers applied to all requests.
// Values are processed for ${VAR_NAME} environment variable substitution.
func (c *Client) SetDefaultHeaders(headers map[string]string) {
	c.defaultHeaders = headers
}

// Config returns the current retry configuration.
func (c *Client) Config() RetryConfig {
	return c.config
}

// Do executes an HTTP request, retrying on network errors and 5xx/429
// responses with exponential backoff when retries are configured.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			c.delayFunc(c.calculateDelay(attempt))
		}

		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if isTimeoutError(err) {
				lastErr = fmt.Errorf("%w: %v", ErrRequestTimeout, err)
			}
			continue
		}

		if c.shouldRetry(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
			continue
		}

		return resp, nil
	}

	if c.config.MaxRetries > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
	}
	return nil, lastErr
}

// Get performs an HTTP GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.GetWithHeaders(ctx, url, nil)
}

// GetWithHeaders performs an HTTP GET request with custom headers.
// Header values are processed for ${VAR_NAME} environment variable
// substitution so credentials never appear in source definitions.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	for key, value := range c.defaultHeaders {
		req.Header.Set(key, SubstituteEnvVars(value))
	}
	for key, value := range headers {
		req.Header.Set(key, SubstituteEnvVars(value))
	}

	return c.Do(ctx, req)
}

// GetBody performs a GET request and returns the response body.
// Non-2xx responses are an error; the body is fully read and closed.
func (c *Client) GetBody(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	resp, err := c.GetWithHeaders(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %w: %d", ErrFetchFailed, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}
	return body, nil
}

// calculateDelay calculates the delay for a given retry attempt.
// Uses exponential backoff: delay = baseDelay * 2^(attempt-1)
func (c *Client) calculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	multiplier := 1 << (attempt - 1)
	delay := c.config.BaseDelay * time.Duration(multiplier)
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}
	return delay
}

// shouldRetry determines if a request should be retried based on status code.
// Retries on 5xx server errors and 429 (Too Many Requests).
func (c *Client) shouldRetry(statusCode int) bool {
	if c.config.MaxRetries == 0 {
		return false
	}
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	return statusCode == http.StatusTooManyRequests
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	type timeoutError interface {
		Timeout() bool
	}
	var te timeoutError
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

// SubstituteEnvVars replaces ${VAR_NAME} patterns in a string with the
// corresponding environment variable values. An unset variable is replaced
// with an empty string.
func SubstituteEnvVars(value string) string {
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}
