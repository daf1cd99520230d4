package failsafe

import "sort"

// PatternEntry is one policy in a [Policy]'s ordered list: a tagged
// variant carrying its middleware and the position it takes in the chain.
type PatternEntry[T any] struct {
	MW       Middleware[T]
	Name     string
	Priority int
}

// Priority constants define the execution order of policy entries.
// Lower priority = outermost middleware (executed first).
const (
	priorityFallback = 0 // outermost — last resort
	priorityBreaker  = 1
	priorityExecutor = 2
	priorityRetry    = 3 // innermost — closest to the operation
)

// Entry names, as reported by [Policy.Slots].
const (
	slotFallback = "fallback"
	slotBreaker  = "breaker"
	slotExecutor = "executor"
	slotRetry    = "retry"
)

// SortPatterns orders entries by priority (lowest first = outermost).
// Entries sharing a priority keep their declaration order.
func SortPatterns[T any](entries []PatternEntry[T]) []PatternEntry[T] {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]PatternEntry[T], 0, len(entries))
	sorted = append(sorted, entries...)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	return sorted
}

// middlewares extracts the middleware of each entry, preserving order.
func middlewares[T any](entries []PatternEntry[T]) []Middleware[T] {
	mws := make([]Middleware[T], 0, len(entries))
	for _, e := range entries {
		mws = append(mws, e.MW)
	}

	return mws
}
