package fetch

import (
	"context"
	"errors"
	"math"
	"time"

	coreerrors "newswire-api/core/errors"
)

// ShouldRetry reports whether another attempt could succeed after err.
// Terminal HTTP statuses (403, 404, 410) and caller cancellation stop the loop;
// network failures, timeouts and every other status are retried.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *coreerrors.HTTPStatusError
	if errors.As(err, &statusErr) {
		return !statusErr.Terminal()
	}
	return true
}

// Backoff returns the delay before retry attempt n (n >= 1): base * 1.5^(n-1)
func Backoff(base time.Duration, n int) time.Duration {
	if n < 1 || base <= 0 {
		return 0
	}
	return time.Duration(float64(base) * math.Pow(1.5, float64(n-1)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
