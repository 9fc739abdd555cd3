package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kissncome-byte/stock-app/internal/ratelimit"
)

// Client is an HTTP client with rate limiting and bounded retries.
// Retry policy lives here, at the provider boundary; the engines behind
// it never retry.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	maxElapsed time.Duration
}

// Options holds options for creating a new Client
type Options struct {
	Name            string
	Timeout         time.Duration
	PerMinute       int
	MaxRetryElapsed time.Duration
}

// NewClient creates a new rate-limited HTTP client
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PerMinute == 0 {
		opts.PerMinute = 30
	}
	if opts.MaxRetryElapsed == 0 {
		opts.MaxRetryElapsed = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    ratelimit.NewLimiter(opts.Name, opts.PerMinute),
		maxElapsed: opts.MaxRetryElapsed,
	}
}

// Do performs an HTTP request with rate limiting and exponential-backoff
// retries on transport errors and non-200 responses.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			err = &StatusError{StatusCode: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

// StatusError represents an error due to a non-200 HTTP status code
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}
