package failsafe

import "context"

// Do is a convenience function that runs fn under an anonymous policy
// built from opts, without naming or registering it. Retry events name
// the operation after fn's symbol.
func Do[T any](ctx context.Context, fn func(context.Context) (T, error), opts ...any) (T, error) {
	p := NewPolicy[T]("", opts...)
	return p.Do(withOperation(ctx, funcName(fn)), fn)
}
