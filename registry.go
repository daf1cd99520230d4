package failsafe

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Describer — non-generic view of a policy
// ---------------------------------------------------------------------------

type (
	// Describer is implemented by all Policy[T] instances. The interface is
	// non-generic, so policies with different type parameters share one
	// registry.
	Describer interface {
		// Name returns the policy's name.
		Name() string
		// Describe returns a serialisable snapshot of the policy.
		Describe() PolicyDescription
	}

	// PolicyDescription is the serialisable snapshot of a policy.
	PolicyDescription struct {
		Retry    *RetryDescription `json:"retry,omitempty"`
		Fallback FallbackConfig    `json:"fallback,omitempty"`
		Breaker  BreakerConfig     `json:"breaker,omitempty"`
		Executor ExecutorConfig    `json:"executor,omitempty"`
		Name     string            `json:"name"`
		Slots    []string          `json:"slots"`
	}

	// RetryDescription is the serialisable form of [RetrySettings].
	RetryDescription struct {
		Delay      string   `json:"delay"`
		Errors     []string `json:"errors"`
		MaxRetries int      `json:"max_retries"`
	}

	// Inventory is the list of registered policies.
	Inventory struct {
		Policies []PolicyDescription `json:"policies"`
	}

	// Registry tracks named policies and the configurations loaded by
	// [LoadConfig].
	//
	// Pattern: Singleton — DefaultRegistry uses sync.OnceValue for safe lazy
	// init; explicit registries can be created for testing or multi-tenant
	// scenarios.
	Registry struct {
		describers atomic.Pointer[[]Describer]
		configs    map[string]PolicyConfig
		kinds      map[string]ErrorKind
		mu         sync.Mutex
	}
)

// Describe returns a snapshot of the policy's entries and settings.
func (p *Policy[T]) Describe() PolicyDescription {
	d := PolicyDescription{
		Name:  p.name,
		Slots: p.Slots(),
	}

	if s, ok := p.Retry(); ok {
		d.Retry = &RetryDescription{
			MaxRetries: s.MaxRetries,
			Delay:      s.Delay.String(),
			Errors:     s.Errors.Names(),
		}
	}

	d.Fallback, _ = p.Fallback()
	d.Breaker, _ = p.Breaker()
	d.Executor, _ = p.Executor()

	return d
}

//nolint:gochecknoglobals // singleton via sync.OnceValue
var defaultRegistry = sync.OnceValue(NewRegistry)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}

	var empty []Describer

	r.describers.Store(&empty)

	return r
}

// Register adds a policy to the registry. It is called by NewPolicy for
// named policies. Safe for concurrent use, intended for initialization.
func (r *Registry) Register(d Describer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.describers.Load()
	// Copy-on-write: concurrent readers may be iterating the old slice.
	updated := make([]Describer, len(old), len(old)+1)
	copy(updated, old)
	updated = append(updated, d)
	r.describers.Store(&updated)
}

// Inventory describes every registered policy, in registration order.
func (r *Registry) Inventory() Inventory {
	describers := *r.describers.Load()

	inv := Inventory{
		Policies: make([]PolicyDescription, 0, len(describers)),
	}

	for _, d := range describers {
		inv.Policies = append(inv.Policies, d.Describe())
	}

	return inv
}

// ConfigNames returns the sorted names of the loaded policy configs.
func (r *Registry) ConfigNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Sorted(maps.Keys(r.configs))
}

// Config returns the loaded configuration for name.
func (r *Registry) Config(name string) (PolicyConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pc, ok := r.configs[name]

	return pc, ok
}

// DefaultRegistry returns the package-level global registry, creating it
// on first call.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
