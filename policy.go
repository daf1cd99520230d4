package failsafe

import (
	"context"
	"log/slog"

	"github.com/go-logr/logr"
)

// ---------------------------------------------------------------------------
// Policy[T] — the central integration type
// ---------------------------------------------------------------------------

// Policy is an immutable, ordered list of policy entries (retry, fallback,
// breaker, executor) applied behind a single [Policy.Do] method. An
// unconfigured entry is absent from the list. Use [NewPolicy] with
// functional options to build one.
//
// Pattern: Functional Options — generic options use any to work around
// Go's generic type constraint on function signatures.
type Policy[T any] struct {
	clock Clock
	chain Middleware[T]

	fallback FallbackConfig
	breaker  BreakerConfig
	executor ExecutorConfig
	retry    *RetrySettings

	registry *Registry

	name string

	entries []PatternEntry[T]
	hooks   Hooks
}

// Name returns the policy's name.
func (p *Policy[T]) Name() string { return p.name }

// Do executes fn through the composed entry chain. A policy without a
// retry entry calls fn exactly once.
func (p *Policy[T]) Do(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return p.chain(fn)(ctx)
}

// Retry returns the resolved retry settings and whether a retry entry is
// configured.
func (p *Policy[T]) Retry() (RetrySettings, bool) {
	if p.retry == nil {
		return RetrySettings{}, false
	}

	s := *p.retry
	s.Errors = append(ErrorKinds(nil), p.retry.Errors...)

	return s, true
}

// Slots returns the names of the configured entries in execution order,
// outermost first.
func (p *Policy[T]) Slots() []string {
	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		names = append(names, e.Name)
	}

	return names
}

// ---------------------------------------------------------------------------
// Non-generic option descriptors — stored as any, interpreted by NewPolicy[T]
// ---------------------------------------------------------------------------

// policyOptionFunc is a non-generic option that modifies policySetup.
type policyOptionFunc func(*policySetup)

// policySetup holds non-generic configuration collected during NewPolicy.
type policySetup struct {
	clock     Clock
	logger    *slog.Logger
	registry  *Registry
	hooks     Hooks
	loggerSet bool
}

// retryDesc holds deferred retry configuration.
type retryDesc struct {
	opts []RetryOption
}

// WithClock sets the clock used to pace retries.
func WithClock(c Clock) any {
	return policyOptionFunc(func(s *policySetup) {
		s.clock = c
	})
}

// WithHooks adds lifecycle hooks to the policy. Repeated options
// accumulate in declaration order. Log records are emitted in addition to
// these hooks.
func WithHooks(h Hooks) any {
	return policyOptionFunc(func(s *policySetup) {
		s.hooks = MergeHooks(s.hooks, h)
	})
}

// WithLogger sets the logger receiving one warning record per retried
// failure. Without this option the policy captures [slog.Default] at
// construction. A nil logger disables the records.
func WithLogger(l *slog.Logger) any {
	return policyOptionFunc(func(s *policySetup) {
		s.logger = l
		s.loggerSet = true
	})
}

// WithLogr routes retry warnings to a logr sink.
func WithLogr(l logr.Logger) any {
	return policyOptionFunc(func(s *policySetup) {
		s.logger = slogFromLogr(l)
		s.loggerSet = true
	})
}

// WithRegistry sets an explicit registry for the policy to register with.
// If not provided, named policies auto-register with DefaultRegistry.
func WithRegistry(reg *Registry) any {
	return policyOptionFunc(func(s *policySetup) {
		s.registry = reg
	})
}

// WithRetry adds a fixed-delay retry entry. Defaults: [DefaultMaxRetries]
// attempts, [DefaultDelay] apart, retrying [AnyError].
func WithRetry(opts ...RetryOption) any {
	return retryDesc{opts: opts}
}

// ---------------------------------------------------------------------------
// NewPolicy[T] — construct and wire up the policy
// ---------------------------------------------------------------------------

// NewPolicy creates a new [Policy] with the given name and options.
// Options are processed in two phases: first, non-generic options (clock,
// hooks, logger, registry) are collected; then, entry descriptors build
// their middleware. Declaring the same entry twice keeps the last
// declaration. Entries are sorted by priority via [SortPatterns] before
// chaining. Construction never fails; invalid retry settings surface when
// the policy runs.
func NewPolicy[T any](name string, opts ...any) *Policy[T] {
	var setup policySetup

	// Phase 1: non-generic options.
	for _, opt := range opts {
		if pof, ok := opt.(policyOptionFunc); ok {
			pof(&setup)
		}
	}

	if setup.clock == nil {
		setup.clock = RealClock{}
	}

	if !setup.loggerSet {
		setup.logger = slog.Default()
	}

	p := &Policy[T]{
		name:  name,
		clock: setup.clock,
		hooks: MergeHooks(setup.hooks, LogHooks(setup.logger)),
	}

	// Phase 2: entry descriptors.
	var entries []PatternEntry[T]

	for _, opt := range opts {
		switch desc := opt.(type) {
		case retryDesc:
			settings := resolveRetry(desc.opts)
			p.retry = &settings
			entries = putEntry(entries, PatternEntry[T]{
				Priority: priorityRetry,
				Name:     slotRetry,
				MW:       p.retryMiddleware(settings),
			})

		case fallbackDesc:
			p.fallback = desc.cfg
			entries = putEntry(entries, PatternEntry[T]{
				Priority: priorityFallback,
				Name:     slotFallback,
				MW:       passThrough[T],
			})

		case breakerDesc:
			p.breaker = desc.cfg
			entries = putEntry(entries, PatternEntry[T]{
				Priority: priorityBreaker,
				Name:     slotBreaker,
				MW:       passThrough[T],
			})

		case executorDesc:
			p.executor = desc.cfg
			entries = putEntry(entries, PatternEntry[T]{
				Priority: priorityExecutor,
				Name:     slotExecutor,
				MW:       passThrough[T],
			})
		}
	}

	p.entries = SortPatterns(entries)
	p.chain = Chain(middlewares(p.entries)...)

	if name != "" {
		p.registry = setup.registry
		if p.registry == nil {
			p.registry = DefaultRegistry()
		}

		p.registry.Register(p)
	}

	return p
}

// retryMiddleware names retry events after the operation carried by ctx,
// or after the policy when ctx carries none.
func (p *Policy[T]) retryMiddleware(settings RetrySettings) Middleware[T] {
	return func(next func(context.Context) (T, error)) func(context.Context) (T, error) {
		return func(ctx context.Context) (T, error) {
			name := operationFrom(ctx)
			if name == "" {
				name = p.name
			}

			return DoRetry(ctx, name, settings, next, &p.hooks, p.clock)
		}
	}
}

// putEntry replaces the entry named like e, or appends e.
func putEntry[T any](entries []PatternEntry[T], e PatternEntry[T]) []PatternEntry[T] {
	for i := range entries {
		if entries[i].Name == e.Name {
			entries[i] = e
			return entries
		}
	}

	return append(entries, e)
}
