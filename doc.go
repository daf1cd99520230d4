// Package failsafe executes operations under a failure-handling policy.
//
// The central type is Policy[T], an immutable, ordered list of policy
// entries. Retry with a fixed delay is the only entry with runtime
// behavior; fallback, breaker and executor entries are stored as
// configuration and passed through untouched. Operation[A, R] binds a
// function to a policy and exposes both the bare call and the guarded one.
package failsafe
