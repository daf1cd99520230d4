package failsafe

type (
	// ResilienceError identifies errors produced by the policy layer itself,
	// as opposed to errors returned by the wrapped operation.
	//nolint:iface // exported for consumer error classification.
	ResilienceError interface {
		error
		// IsResilience reports whether this error originates from the
		// policy layer.
		IsResilience() bool
	}

	// resilienceError is the concrete type backing all sentinel errors.
	resilienceError string
)

// ErrInvalidConfig is returned when a policy is run with settings that
// cannot be executed, such as a non-positive attempt budget.
var ErrInvalidConfig error = resilienceError("invalid policy configuration")

func (e resilienceError) Error() string { return string(e) }

// IsResilience reports whether the error is a policy infrastructure error.
func (resilienceError) IsResilience() bool { return true }
