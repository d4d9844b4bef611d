package llm

import (
	"context"
	"log"
	"time"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
)

// RetryPolicy controls retry behavior for transient external-call
// failures. Permanent failures (schema validation) are never retried.
type RetryPolicy struct {
	// MaxAttempts is the total attempt cap, including the first call.
	MaxAttempts int
	// BaseDelay is the delay before the first retry; it doubles each
	// attempt up to MaxDelay.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the standard small-cap policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Do runs fn, retrying transient failures with exponential backoff up
// to the attempt cap. Non-transient errors return immediately.
func (p RetryPolicy) Do(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !fault.IsTransient(err) {
			return err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		log.Printf("[llm] %s: attempt %d/%d failed, retrying in %s: %v",
			label, attempt, attempts, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return lastErr
}
