package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// resilientClient issues GET requests with retries, exponential backoff, and
// a circuit breaker, and decodes JSON responses.
type resilientClient struct {
	client    *http.Client
	backoff   BackoffConfig
	breaker   *gobreaker.CircuitBreaker
	userAgent string
}

func newResilientClient(client *http.Client, breakerName, userAgent string) *resilientClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &resilientClient{
		client: client,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		breaker:   cb,
		userAgent: userAgent,
	}
}

// getJSON fetches url and decodes the response body into out.
func (c *resilientClient) getJSON(ctx context.Context, url string, out any) error {
	if c.client == nil {
		return errNoHTTPClient
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/geo+json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			resp, execErr := c.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Rate limiting and server errors are retryable.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return fmt.Errorf("unexpected result type from circuit breaker")
			}
			defer resp.Body.Close()
			return json.NewDecoder(resp.Body).Decode(out)
		}

		// An open circuit means the endpoint is struggling; do not hammer it.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if attempt >= c.backoff.MaxRetries {
			return err
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
