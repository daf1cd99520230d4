package failsafe

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrorKind classifies failures. A retry entry only retries failures
// matched by one of its kinds; everything else is returned on the spot.
//
// Pattern: Strategy — callers choose how failures are recognised
// (sentinel identity, concrete type, arbitrary predicate) without the
// retry loop knowing the difference.
type ErrorKind interface {
	// Match reports whether err belongs to this kind.
	Match(err error) bool
	// String names the kind in logs and policy descriptions.
	String() string
}

// ErrorKinds is a set of kinds; it matches when any member matches.
type ErrorKinds []ErrorKind

// Match reports whether any kind in ks matches err.
func (ks ErrorKinds) Match(err error) bool {
	for _, k := range ks {
		if k != nil && k.Match(err) {
			return true
		}
	}

	return false
}

// Names returns the String of every non-nil kind, in order.
func (ks ErrorKinds) Names() []string {
	names := make([]string, 0, len(ks))
	for _, k := range ks {
		if k == nil {
			continue
		}

		names = append(names, k.String())
	}

	return names
}

// String joins the kind names with commas.
func (ks ErrorKinds) String() string {
	return strings.Join(ks.Names(), ",")
}

// AnyError matches every non-nil error. It is the default retry filter.
//
//nolint:gochecknoglobals // immutable catch-all kind
var AnyError ErrorKind = anyError{}

type anyError struct{}

func (anyError) Match(err error) bool { return err != nil }
func (anyError) String() string       { return "any" }

// isKind matches errors whose chain contains target.
type isKind struct {
	target error
}

func (k isKind) Match(err error) bool { return errors.Is(err, k.target) }
func (k isKind) String() string       { return k.target.Error() }

// ErrorIs returns a kind matching every error for which errors.Is(err,
// target) holds. A nil target yields a nil kind, which [RetryOn] ignores.
//
//nolint:ireturn // kinds are consumed through the interface
func ErrorIs(target error) ErrorKind {
	if target == nil {
		return nil
	}

	return isKind{target: target}
}

// asKind matches errors whose chain contains a value assignable to E.
type asKind[E error] struct{}

func (asKind[E]) Match(err error) bool {
	var target E

	return errors.As(err, &target)
}

func (asKind[E]) String() string {
	return reflect.TypeFor[E]().String()
}

// ErrorAs returns a kind matching every error whose chain contains a value
// of type E, as decided by errors.As.
//
//nolint:ireturn // kinds are consumed through the interface
func ErrorAs[E error]() ErrorKind {
	return asKind[E]{}
}

// funcKind adapts a predicate.
type funcKind struct {
	fn   func(error) bool
	name string
}

func (k funcKind) Match(err error) bool { return k.fn(err) }
func (k funcKind) String() string       { return k.name }

// ErrorFunc returns a kind backed by an arbitrary predicate. name is used
// in logs and descriptions; an empty name falls back to the predicate's
// address. A nil predicate yields a nil kind.
//
//nolint:ireturn // kinds are consumed through the interface
func ErrorFunc(name string, fn func(error) bool) ErrorKind {
	if fn == nil {
		return nil
	}

	if name == "" {
		name = fmt.Sprintf("func@%p", fn)
	}

	return funcKind{name: name, fn: fn}
}
