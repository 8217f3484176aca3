package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Policy holds the parameters for retrying transient external-service
// failures: a fixed attempt cap with exponential backoff between attempts.
// One policy value is shared by every external lookup call site.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Log         zerolog.Logger
}

// Default mirrors the behaviour expected from the lookup services:
// three attempts, one second base delay, doubling.
func Default(log zerolog.Logger) Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Log: log}
}

// Do executes fn until it succeeds or the attempt cap is reached. The
// sleep between attempts doubles each time and honours ctx cancellation.
func (p Policy) Do(ctx context.Context, operation string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt < attempts {
			p.Log.Warn().
				Str("operation", operation).
				Int("attempt", attempt).
				Int("max", attempts).
				Dur("backoff", delay).
				Err(lastErr).
				Msg("retrying after transient failure")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
