// Package retry implements the bounded-retry driver shared by the
// response and evaluation passes: a fixed attempt budget with linear
// backoff between attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy bounds repeated attempts. After failed attempt i (0-based, not
// the last) the driver sleeps (i+1) * BackoffUnit: with a 5s unit that is
// 5s then 10s. Sleep is replaceable for tests; nil means time.Sleep.
type Policy struct {
	MaxAttempts int
	BackoffUnit time.Duration
	Sleep       func(time.Duration)
}

// Permanent marks errors that must not be retried, such as configuration
// failures surfaced mid-call.
type Permanent interface {
	Permanent() bool
}

func permanent(err error) bool {
	var p Permanent
	return errors.As(err, &p) && p.Permanent()
}

// Do invokes fn until it succeeds, returns a permanent error, the context
// ends, or the attempt budget is exhausted. The last attempt's error is
// returned unwrapped so callers can classify it.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		return zero, errors.New("retry: nil context")
	}
	if fn == nil {
		return zero, errors.New("retry: nil attempt func")
	}

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var last error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		last = err

		if permanent(err) {
			return zero, err
		}
		if i < attempts-1 {
			sleep(time.Duration(i+1) * p.BackoffUnit)
		}
	}
	return zero, last
}
