package failsafe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type (
	// configFile is the top-level structure of a policy file.
	configFile struct {
		Policies map[string]PolicyConfig `json:"policies" yaml:"policies"`
	}

	// PolicyConfig holds the decoded configuration for a single policy.
	// Embed it in your own app config structs for JSON or YAML
	// unmarshaling, then call [BuildOptions] to obtain functional options
	// for [NewPolicy].
	PolicyConfig struct {
		// Retry configures the retry entry.
		// Optional. Example: {"max_retries": 3, "delay": 1}.
		Retry *RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
		// Fallback declares the fallback slot. Stored, not interpreted.
		Fallback FallbackConfig `json:"fallback,omitempty" yaml:"fallback,omitempty"`
		// Breaker declares the circuit-breaker slot. Stored, not
		// interpreted.
		Breaker BreakerConfig `json:"breaker,omitempty" yaml:"breaker,omitempty"`
		// Executor declares the executor slot. Stored, not interpreted.
		Executor ExecutorConfig `json:"executor,omitempty" yaml:"executor,omitempty"`
	}

	// RetryConfig holds retry configuration values. Every field is
	// optional and falls back to the [WithRetry] defaults.
	RetryConfig struct {
		// MaxRetries is the total attempt budget. Example: 3.
		MaxRetries *int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
		// Delay is the pause between attempts, in seconds or as a
		// duration string. Example: 1 or "500ms".
		Delay *Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
		// Errors names the failure kinds eligible for retry, resolved
		// through [BuiltinErrorKinds] and [WithErrorKinds].
		// Example: ["timeout", "unexpected_eof"].
		Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	}

	// ConfigOption configures [LoadConfig].
	ConfigOption func(*Registry)
)

// BuiltinErrorKinds returns the kinds every config file may name:
//
//	any                matches every error
//	canceled           context.Canceled
//	deadline_exceeded  context.DeadlineExceeded
//	timeout            errors exposing Timeout() bool that report true
//	unexpected_eof     io.ErrUnexpectedEOF
func BuiltinErrorKinds() map[string]ErrorKind {
	return map[string]ErrorKind{
		"any":               AnyError,
		"canceled":          ErrorIs(context.Canceled),
		"deadline_exceeded": ErrorIs(context.DeadlineExceeded),
		"timeout":           ErrorFunc("timeout", isTimeout),
		"unexpected_eof":    ErrorIs(io.ErrUnexpectedEOF),
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }

	return errors.As(err, &te) && te.Timeout()
}

// WithErrorKinds makes kinds nameable in the "errors" list of retry
// blocks. Names override built-in kinds; nil kinds are ignored.
func WithErrorKinds(kinds map[string]ErrorKind) ConfigOption {
	return func(r *Registry) {
		if r.kinds == nil {
			r.kinds = BuiltinErrorKinds()
		}

		for name, k := range kinds {
			if k != nil {
				r.kinds[name] = k
			}
		}
	}
}

// LoadConfig reads a policy file and stores its configurations in a new
// [Registry]. Files ending in .yaml or .yml are decoded as YAML, others as
// JSON. Every policy is validated eagerly so errors surface at load time.
// Actual [Policy] instances are not created until [GetPolicy] is called.
func LoadConfig(path string, opts ...ConfigOption) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failsafe: read config: %w", err)
	}

	var cfg configFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("failsafe: parse config: %w", err)
	}

	reg := NewRegistry()
	reg.kinds = BuiltinErrorKinds()

	for _, opt := range opts {
		opt(reg)
	}

	for name, pc := range cfg.Policies {
		if _, buildErr := BuildOptions(&pc, reg.kinds); buildErr != nil {
			return nil, fmt.Errorf("failsafe: policy %q: %w", name, buildErr)
		}
	}

	reg.mu.Lock()
	reg.configs = cfg.Policies
	reg.mu.Unlock()

	return reg, nil
}

// BuildOptions converts a [PolicyConfig] into functional options for
// [NewPolicy]. kinds resolves the names of the retry "errors" list; a nil
// map means [BuiltinErrorKinds]. Retry settings are validated here, unlike
// options built in code, which surface [ErrInvalidConfig] when run.
func BuildOptions(pc *PolicyConfig, kinds map[string]ErrorKind) ([]any, error) {
	if kinds == nil {
		kinds = BuiltinErrorKinds()
	}

	var opts []any

	if pc.Retry != nil {
		retryOpts, err := buildRetryOptions(pc.Retry, kinds)
		if err != nil {
			return nil, fmt.Errorf("retry: %w", err)
		}

		opts = append(opts, WithRetry(retryOpts...))
	}

	if pc.Fallback != nil {
		opts = append(opts, WithFallback(pc.Fallback))
	}

	if pc.Breaker != nil {
		opts = append(opts, WithBreaker(pc.Breaker))
	}

	if pc.Executor != nil {
		opts = append(opts, WithExecutor(pc.Executor))
	}

	return opts, nil
}

func buildRetryOptions(rc *RetryConfig, kinds map[string]ErrorKind) ([]RetryOption, error) {
	var opts []RetryOption

	if rc.MaxRetries != nil {
		opts = append(opts, MaxRetries(*rc.MaxRetries))
	}

	if rc.Delay != nil {
		opts = append(opts, Delay(rc.Delay.Std()))
	}

	if len(rc.Errors) > 0 {
		resolved := make([]ErrorKind, 0, len(rc.Errors))

		for _, name := range rc.Errors {
			kind, ok := kinds[name]
			if !ok || kind == nil {
				return nil, fmt.Errorf("unknown error kind %q", name)
			}

			resolved = append(resolved, kind)
		}

		opts = append(opts, RetryOn(resolved...))
	}

	if err := resolveRetry(opts).Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

// GetPolicy builds a typed [Policy] from the configuration stored under
// name in a config-loaded [Registry] and registers it there. If name is
// unknown, a policy is built from opts alone.
//
// User-provided options are applied after config options, so they take
// precedence: a WithRetry in opts replaces the configured retry entry.
func GetPolicy[T any](reg *Registry, name string, opts ...any) *Policy[T] {
	reg.mu.Lock()
	pc, ok := reg.configs[name]
	kinds := reg.kinds
	reg.mu.Unlock()

	allOpts := []any{WithRegistry(reg)}

	if ok {
		configOpts, err := BuildOptions(&pc, kinds)
		if err == nil {
			allOpts = append(allOpts, configOpts...)
		}
	}

	allOpts = append(allOpts, opts...)

	return NewPolicy[T](name, allOpts...)
}
