// Package retry provides bounded retry with exponential backoff for calls
// to external services.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/meridian-labs/docsight/internal/logger"
)

// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
var ErrInvalidMaxAttempts = errors.New("retry: max attempts must be > 0")

// WithBackoff retries an operation with exponential backoff. The delay
// doubles after each failed attempt, starting at baseDelay. Returns the
// last attempt's error if every attempt fails, or the context error if
// cancelled while waiting.
func WithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		logger.Debug("Attempt %d/%d failed, retrying in %s: %v", attempt, maxAttempts, delay, lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
