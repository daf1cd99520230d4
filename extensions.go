package failsafe

import "maps"

// Extension slot configurations. They are stored on the policy and
// reported by it, but no code path interprets them yet: the entries they
// create pass calls through untouched.
type (
	// FallbackConfig configures result substitution on failure.
	FallbackConfig map[string]any
	// BreakerConfig configures circuit-breaker state tracking.
	BreakerConfig map[string]any
	// ExecutorConfig configures the execution context of the operation.
	ExecutorConfig map[string]any
)

// fallbackDesc, breakerDesc and executorDesc hold deferred slot
// configuration until NewPolicy resolves T.
type (
	fallbackDesc struct{ cfg FallbackConfig }
	breakerDesc  struct{ cfg BreakerConfig }
	executorDesc struct{ cfg ExecutorConfig }
)

// WithFallback declares a fallback slot. The configuration is cloned.
func WithFallback(cfg FallbackConfig) any {
	return fallbackDesc{cfg: cloneConfig(cfg)}
}

// WithBreaker declares a circuit-breaker slot. The configuration is cloned.
func WithBreaker(cfg BreakerConfig) any {
	return breakerDesc{cfg: cloneConfig(cfg)}
}

// WithExecutor declares an executor slot. The configuration is cloned.
func WithExecutor(cfg ExecutorConfig) any {
	return executorDesc{cfg: cloneConfig(cfg)}
}

// cloneConfig returns a shallow copy; a nil map becomes an empty one so
// that a declared slot is never confused with an absent one.
func cloneConfig[M ~map[string]any](m M) M {
	if m == nil {
		return M{}
	}

	return maps.Clone(m)
}

// Fallback returns a copy of the fallback slot configuration and whether
// the slot is declared.
func (p *Policy[T]) Fallback() (FallbackConfig, bool) {
	if p.fallback == nil {
		return nil, false
	}

	return cloneConfig(p.fallback), true
}

// Breaker returns a copy of the breaker slot configuration and whether the
// slot is declared.
func (p *Policy[T]) Breaker() (BreakerConfig, bool) {
	if p.breaker == nil {
		return nil, false
	}

	return cloneConfig(p.breaker), true
}

// Executor returns a copy of the executor slot configuration and whether
// the slot is declared.
func (p *Policy[T]) Executor() (ExecutorConfig, bool) {
	if p.executor == nil {
		return nil, false
	}

	return cloneConfig(p.executor), true
}
