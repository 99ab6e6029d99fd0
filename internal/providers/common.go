package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// DefaultUserAgent identifies the service to upstream APIs. Some of them
// block the default Go user agent.
const DefaultUserAgent = "Mozilla/5.0 (compatible; Weath3rBot/1.0)"

// RetryConfig controls linear backoff: after failed attempt n the client
// waits Step*n before trying again.
type RetryConfig struct {
	MaxRetries int
	Step       time.Duration
}

// DefaultRetry is two retries at 400ms and 800ms.
var DefaultRetry = RetryConfig{MaxRetries: 2, Step: 400 * time.Millisecond}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client *resty.Client
	Retry  RetryConfig

	// Sleep waits between attempts. Nil uses a timer that honours ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ErrUpstream wraps every failure that survived the retry loop.
var ErrUpstream = errors.New("upstream request failed")

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid retry configuration")
)

// newRestyClient builds the per-upstream client. Resty's own retries stay
// off; doRequestWithResilience owns the policy.
func newRestyClient(baseURL string, timeout time.Duration, userAgent string) *resty.Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	if baseURL != "" {
		c.SetBaseURL(baseURL)
	}
	return c
}

// breakerTripAfter is how many consecutive failed calls open a breaker. A call
// counts once however many attempts its retry loop made.
const breakerTripAfter = 5

func newCircuitBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		// A caller giving up says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// doRequestWithResilience executes send with bounded retries and linear
// backoff, returning the body of the first 2xx response. The whole retry
// sequence runs as one circuit breaker request: a call the breaker admits
// always gets MaxRetries+1 attempts, and an open breaker rejects the call
// before any attempt.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	send func(req *resty.Request) (*resty.Response, error),
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if err := cfg.Retry.validate(); err != nil {
		return nil, err
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	result, err := cb.Execute(func() (interface{}, error) {
		return retryLinear(ctx, cfg, sleep, send)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", ErrUpstream, errCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// validate accepts any Step when there is nothing to back off from.
func (r RetryConfig) validate() error {
	if r.MaxRetries < 0 || (r.MaxRetries > 0 && r.Step <= 0) {
		return errInvalidConfig
	}
	return nil
}

func retryLinear(
	ctx context.Context,
	cfg HTTPClientConfig,
	sleep func(ctx context.Context, d time.Duration) error,
	send func(req *resty.Request) (*resty.Response, error),
) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := attemptOnce(ctx, cfg.Client, send)
		if err == nil {
			return body, nil
		}

		if attempt > cfg.Retry.MaxRetries {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrUpstream, attempt, err)
		}

		if err := sleep(ctx, cfg.Retry.Step*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}
}

func attemptOnce(
	ctx context.Context,
	client *resty.Client,
	send func(req *resty.Request) (*resty.Response, error),
) ([]byte, error) {
	resp, err := send(client.R().SetContext(ctx))
	if err != nil {
		return nil, err
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusTooManyRequests:
		return nil, errRateLimited
	case code >= 500:
		return nil, fmt.Errorf("%w: %d", errServerError, code)
	case code < 200 || code >= 300:
		return nil, fmt.Errorf("%w: %d", errUnexpected, code)
	}

	return resp.Body(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
