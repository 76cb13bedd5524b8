package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	apperrors "stock-researcher/internal/errors"
)

// httpClient wraps the standard client with rate limiting and retries.
// Yahoo throttles aggressively, so requests queue behind a shared limiter
// and transient failures retry with exponential backoff, bounded by both
// maxRetries and maxElapsed.
type httpClient struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
	maxRetries uint64
}

// httpClientOptions holds options for creating an httpClient.
type httpClientOptions struct {
	Timeout        time.Duration
	RequestsPerMin int
	MaxRetries     int
	MaxElapsed     time.Duration
}

func newHTTPClient(opts httpClientOptions) *httpClient {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerMin == 0 {
		opts.RequestsPerMin = 10
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.MaxElapsed == 0 {
		opts.MaxElapsed = 30 * time.Second
	}

	return &httpClient{
		client:     &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMin)), opts.RequestsPerMin),
		maxElapsed: opts.MaxElapsed,
		maxRetries: uint64(opts.MaxRetries),
	}
}

// do performs the request with rate limiting and retries. Client errors
// other than 429 are permanent and returned without retrying.
func (c *httpClient) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.client.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusOK {
			return nil
		}
		resp.Body.Close()
		statusErr := &httpStatusError{StatusCode: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(statusErr)
		}
		return statusErr
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxElapsed
	policy := backoff.WithContext(backoff.WithMaxRetries(strategy, c.maxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
		}
		return nil, err
	}

	return resp, nil
}

// httpStatusError represents a non-200 HTTP status code.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps well-known statuses onto the domain sentinels so callers
// can test with errors.Is without knowing the transport.
func (e *httpStatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return apperrors.ErrSymbolNotFound
	case http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	}
	return nil
}
