// ABOUTME: Fetcher retrieves one source URL with per-attempt timeout, retry and backoff
// ABOUTME: Every outcome, including panics and network failures, is returned as a FetchResult

package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"newswire-api/core/domain"
	coreerrors "newswire-api/core/errors"
	"newswire-api/core/interfaces"
)

// Options configures the retry and politeness policy
type Options struct {
	// Timeout bounds each individual attempt
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// RetryBaseDelay is the delay before the first retry
	RetryBaseDelay time.Duration

	// Headers are sent with every attempt in addition to the random User-Agent
	Headers map[string]string

	// MaxBodyBytes caps how much of a response body is read. 0 means unlimited.
	MaxBodyBytes int64

	// RequestsPerSecond throttles attempts across all URLs. 0 disables it.
	RequestsPerSecond float64
}

// DefaultOptions returns the fetch policy used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Timeout:        10 * time.Second,
		MaxRetries:     2,
		RetryBaseDelay: time.Second,
		MaxBodyBytes:   5 << 20,
	}
}

// Fetcher implements interfaces.Fetcher
type Fetcher struct {
	client  interfaces.HTTPClient
	logger  interfaces.Logger
	opts    Options
	limiter *rate.Limiter

	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	userAgent func() string
}

// NewFetcher creates a fetcher around a single-attempt HTTP client
func NewFetcher(client interfaces.HTTPClient, logger interfaces.Logger, opts Options) *Fetcher {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	f := &Fetcher{
		client:    client,
		logger:    logger,
		opts:      opts,
		sleep:     sleepContext,
		now:       time.Now,
		userAgent: RandomUserAgent,
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return f
}

// Fetch retrieves url. It never returns a Go error and never panics.
func (f *Fetcher) Fetch(ctx context.Context, url string) (result domain.FetchResult) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Fetch panicked", map[string]interface{}{
				"url":   url,
				"panic": fmt.Sprint(r),
			})
			result = domain.NewErrorResult(url, 0, fmt.Errorf("fetch panicked: %v", r), f.now())
		}
	}()

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := f.sleep(ctx, Backoff(f.opts.RetryBaseDelay, attempt)); err != nil {
				lastErr = err
				break
			}
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		attempts++
		payload, statusCode, err := f.attempt(ctx, url)
		if err == nil {
			f.logger.Debug("Fetched source", map[string]interface{}{
				"url":         url,
				"status_code": statusCode,
				"attempts":    attempts,
				"bytes":       len(payload),
			})
			return domain.FetchResult{
				URL:        url,
				Status:     domain.StatusSuccess,
				StatusCode: statusCode,
				Timestamp:  f.now(),
				RawPayload: payload,
				Links:      []domain.Link{},
				Articles:   []domain.Article{},
			}
		}

		lastErr = err
		if !ShouldRetry(err) || ctx.Err() != nil {
			break
		}
		f.logger.Debug("Fetch attempt failed, retrying", map[string]interface{}{
			"url":     url,
			"attempt": attempts,
			"error":   err.Error(),
		})
	}

	f.logger.Warn("Fetch failed", map[string]interface{}{
		"url":      url,
		"attempts": attempts,
		"error":    lastErr.Error(),
	})
	return domain.NewErrorResult(url, coreerrors.StatusCode(lastErr), lastErr, f.now())
}

// attempt performs a single GET under its own timeout
func (f *Fetcher) attempt(ctx context.Context, url string) (string, int, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	headers := make(map[string]string, len(f.opts.Headers)+1)
	headers["User-Agent"] = f.userAgent()
	for k, v := range f.opts.Headers {
		headers[k] = v
	}

	resp, err := f.client.Get(ctx, url, headers)
	if err != nil {
		return "", 0, err
	}
	body := resp.Body()
	defer body.Close()

	code := resp.StatusCode()
	if code < 200 || code > 299 {
		return "", code, &coreerrors.HTTPStatusError{URL: url, StatusCode: code}
	}

	var r io.Reader = body
	if f.opts.MaxBodyBytes > 0 {
		r = io.LimitReader(body, f.opts.MaxBodyBytes)
	}
	decoded, err := charset.NewReader(r, resp.Header("Content-Type"))
	if err != nil {
		return "", code, coreerrors.WrapError(err, "failed to decode body")
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", code, coreerrors.WrapError(err, "failed to read body")
	}
	return string(data), code, nil
}
