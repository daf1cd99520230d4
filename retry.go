package failsafe

import (
	"context"
	"fmt"
	"time"
)

// Retry defaults applied when an option is not given.
const (
	DefaultMaxRetries = 3
	DefaultDelay      = time.Second
)

// RetrySettings is the resolved configuration of a retry entry.
type RetrySettings struct {
	// Errors lists the failure kinds eligible for retry.
	Errors ErrorKinds
	// MaxRetries is the total attempt budget, first call included.
	MaxRetries int
	// Delay is the fixed pause between eligible failures. Zero disables
	// pacing.
	Delay time.Duration
}

// DefaultRetrySettings returns three attempts, one second apart, retrying
// any error.
func DefaultRetrySettings() RetrySettings {
	return RetrySettings{
		MaxRetries: DefaultMaxRetries,
		Delay:      DefaultDelay,
		Errors:     ErrorKinds{AnyError},
	}
}

// Validate reports settings the retry loop cannot execute.
func (s RetrySettings) Validate() error {
	if s.MaxRetries < 1 {
		return fmt.Errorf(
			"%w: max_retries must be at least 1, got %d",
			ErrInvalidConfig,
			s.MaxRetries,
		)
	}

	if s.Delay < 0 {
		return fmt.Errorf(
			"%w: delay must not be negative, got %s",
			ErrInvalidConfig,
			s.Delay,
		)
	}

	return nil
}

// RetryOption configures retry behavior.
type RetryOption func(*RetrySettings)

// MaxRetries sets the total attempt budget.
func MaxRetries(n int) RetryOption {
	return func(s *RetrySettings) {
		s.MaxRetries = n
	}
}

// Delay sets the fixed pause between attempts.
func Delay(d time.Duration) RetryOption {
	return func(s *RetrySettings) {
		s.Delay = d
	}
}

// RetryOn restricts retries to failures matching one of kinds. Calling it
// with no kinds keeps the current filter.
func RetryOn(kinds ...ErrorKind) RetryOption {
	return func(s *RetrySettings) {
		var set ErrorKinds
		for _, k := range kinds {
			if k != nil {
				set = append(set, k)
			}
		}

		if len(set) == 0 {
			return
		}

		s.Errors = set
	}
}

func resolveRetry(opts []RetryOption) RetrySettings {
	s := DefaultRetrySettings()
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// Pattern: Retry with fixed delay — masks transient failures; failures
// outside the configured kinds stop the loop at once.

// DoRetry executes fn up to settings.MaxRetries times. A success returns
// immediately. A failure not matched by settings.Errors is returned
// unchanged without further attempts. An eligible failure is followed by a
// pause of settings.Delay, unless it was the last attempt, in which case
// it is returned unchanged. Settings that fail [RetrySettings.Validate]
// return an [ErrInvalidConfig] error and fn is never called.
//
// If ctx is done while pacing, the returned error matches both ctx.Err()
// and the last failure.
func DoRetry[T any](
	ctx context.Context,
	operation string,
	settings RetrySettings,
	fn func(context.Context) (T, error),
	hooks *Hooks,
	clock Clock,
) (T, error) {
	var zero T

	if err := settings.Validate(); err != nil {
		return zero, err
	}

	var lastErr error

	for attempt := 1; attempt <= settings.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		ev := RetryEvent{
			Operation:  operation,
			Attempt:    attempt,
			MaxRetries: settings.MaxRetries,
			Err:        err,
		}

		if !settings.Errors.Match(err) {
			hooks.emitRejected(ev)
			return zero, err
		}

		if attempt == settings.MaxRetries {
			hooks.emitExhausted(ev)
			break
		}

		ev.Delay = settings.Delay
		hooks.emitRetry(ev)

		if settings.Delay == 0 {
			continue
		}

		timer := clock.NewTimer(settings.Delay)
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("%w: %w", ctx.Err(), lastErr)
		}
	}

	return zero, lastErr
}
