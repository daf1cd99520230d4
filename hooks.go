package failsafe

import "time"

// RetryEvent describes one classified failure inside the retry loop.
type RetryEvent struct {
	// Err is the failure returned by the operation on this attempt.
	Err error
	// Operation names the wrapped operation.
	Operation string
	// Attempt is the 1-indexed attempt that just failed.
	Attempt int
	// MaxRetries is the attempt budget of the loop.
	MaxRetries int
	// Delay is the pacing interval before the next attempt. It is zero
	// for events that end the loop.
	Delay time.Duration
}

// Hooks holds optional callbacks for retry lifecycle events. All fields
// are nil by default; callers set only the hooks they care about. Once
// constructed, a Hooks value must not be mutated; emit methods read the
// function fields without synchronisation.
//
// Pattern: Observer — decouples event emission from consumers (logging,
// metrics, alerting) without the retry loop knowing about them.
type Hooks struct {
	// OnRetry fires for an eligible failure with attempts left, before
	// pacing.
	OnRetry func(RetryEvent)
	// OnRejected fires for a failure the retry filter does not match.
	OnRejected func(RetryEvent)
	// OnExhausted fires for an eligible failure on the last attempt.
	OnExhausted func(RetryEvent)
}

// MergeHooks returns Hooks that call every non-nil callback of hs, in
// order.
func MergeHooks(hs ...Hooks) Hooks {
	var merged Hooks

	for _, h := range hs {
		merged.OnRetry = chainEvent(merged.OnRetry, h.OnRetry)
		merged.OnRejected = chainEvent(merged.OnRejected, h.OnRejected)
		merged.OnExhausted = chainEvent(merged.OnExhausted, h.OnExhausted)
	}

	return merged
}

func chainEvent(first, second func(RetryEvent)) func(RetryEvent) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}

	return func(ev RetryEvent) {
		first(ev)
		second(ev)
	}
}

func (h *Hooks) emitRetry(ev RetryEvent) {
	if h.OnRetry != nil {
		h.OnRetry(ev)
	}
}

func (h *Hooks) emitRejected(ev RetryEvent) {
	if h.OnRejected != nil {
		h.OnRejected(ev)
	}
}

func (h *Hooks) emitExhausted(ev RetryEvent) {
	if h.OnExhausted != nil {
		h.OnExhausted(ev)
	}
}
