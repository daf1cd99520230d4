package failsafe

import (
	"context"
	"reflect"
	"runtime"
)

// Func is an operation taking one argument. Operations needing several
// inputs take a struct; operations needing none take struct{}.
type Func[A, R any] func(ctx context.Context, arg A) (R, error)

// Operation binds a function to a [Policy]. It has two entry points:
// [Operation.Call] runs the bare function, [Operation.Failsafe] runs it
// under the policy. Callers opt into the policy per call site.
type Operation[A, R any] struct {
	fn     Func[A, R]
	policy *Policy[R]
	name   string
}

// Wrap builds a policy from opts and binds fn to it. The operation takes
// name, or fn's symbol name when name is empty. See [NewPolicy] for the
// options and the registration rules attached to name.
func Wrap[A, R any](name string, fn Func[A, R], opts ...any) *Operation[A, R] {
	op := Bind(NewPolicy[R](name, opts...), fn)
	if name != "" {
		op.name = name
	}

	return op
}

// Bind attaches fn to an existing policy. The policy is shared, not
// copied, so one policy may guard many operations. The operation is named
// after fn's symbol, or after the policy when fn has none.
func Bind[A, R any](policy *Policy[R], fn Func[A, R]) *Operation[A, R] {
	name := funcName(fn)
	if name == "" {
		name = policy.Name()
	}

	return &Operation[A, R]{fn: fn, policy: policy, name: name}
}

// Name returns the name retry records carry for this operation.
func (o *Operation[A, R]) Name() string { return o.name }

// Policy returns the bound policy.
func (o *Operation[A, R]) Policy() *Policy[R] { return o.policy }

// Call invokes the bare function with no policy applied.
func (o *Operation[A, R]) Call(ctx context.Context, arg A) (R, error) {
	return o.fn(ctx, arg)
}

// Failsafe invokes the function under the bound policy.
func (o *Operation[A, R]) Failsafe(ctx context.Context, arg A) (R, error) {
	return o.policy.Do(
		withOperation(ctx, o.name),
		func(ctx context.Context) (R, error) {
			return o.fn(ctx, arg)
		},
	)
}

type operationKey struct{}

func withOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

// operationFrom returns the operation name stored in ctx, if any.
func operationFrom(ctx context.Context) string {
	name, _ := ctx.Value(operationKey{}).(string)
	return name
}

// funcName returns the runtime symbol of fn, e.g. "main.fetchQuote".
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}

	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}

	return ""
}
