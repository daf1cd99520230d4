package failsafe

import "context"

// Pattern: Decorator — each policy entry wraps the next, forming a chain
// where order determines execution semantics.

// Middleware wraps a function call with additional behavior.
type Middleware[T any] func(next func(context.Context) (T, error)) func(context.Context) (T, error)

// Chain composes middlewares into one. The first middleware is the
// outermost wrapper: Chain(a, b, c) produces a(b(c(next))). Chain() is the
// identity.
func Chain[T any](mws ...Middleware[T]) Middleware[T] {
	return func(next func(context.Context) (T, error)) func(context.Context) (T, error) {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}

		return next
	}
}

// passThrough is the middleware of entries that carry configuration only.
func passThrough[T any](next func(context.Context) (T, error)) func(context.Context) (T, error) {
	return next
}
