// Package retry provides a bounded-retry combinator for fallible external
// calls (LLM requests, HTTP fetches). Business logic stays free of sleep
// loops; callers wrap the call site instead.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls how many attempts are made and how long to wait between
// them. With Backoff set, the delay doubles after each failed attempt.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool
}

// DefaultPolicy matches the fixed retry-with-sleep behavior used around
// generation calls: three attempts, five seconds apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 5 * time.Second}
}

// Do invokes fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned wrapped with the attempt count.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	delay := p.Delay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if p.Backoff {
			delay *= 2
		}
	}
	return fmt.Errorf("after %d attempts: %w", p.MaxAttempts, lastErr)
}

// DoValue is Do for calls that produce a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		var inner error
		out, inner = fn(ctx)
		return inner
	})
	return out, err
}
