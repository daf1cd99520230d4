package failsafe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// quietOpts keeps policy tests off the default registry and logger.
func quietOpts(clk Clock, opts ...any) []any {
	return append([]any{
		WithClock(clk),
		WithLogger(nil),
		WithRegistry(NewRegistry()),
	}, opts...)
}

// ---------------------------------------------------------------------------
// Without a retry entry
// ---------------------------------------------------------------------------

func TestPolicyWithoutRetryCallsOnce(t *testing.T) {
	clk := newImmediateTestClock()
	p := NewPolicy[string]("no-retry", quietOpts(clk)...)

	calls := 0
	_, err := p.Do(context.Background(), func(_ context.Context) (string, error) {
		calls++
		return "", errValue
	})

	if err != errValue {
		t.Fatalf("Do() error = %v, want %v", err, errValue)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if _, ok := p.Retry(); ok {
		t.Fatal("Retry() ok = true, want false")
	}
}

func TestPolicyWithoutRetryReturnsResult(t *testing.T) {
	p := NewPolicy[int]("", quietOpts(newImmediateTestClock())...)

	got, err := p.Do(context.Background(), func(_ context.Context) (int, error) {
		return 9, nil
	})
	if err != nil || got != 9 {
		t.Fatalf("Do() = (%d, %v), want (9, nil)", got, err)
	}
}

// ---------------------------------------------------------------------------
// Reference scenarios
// ---------------------------------------------------------------------------

func TestPolicyScenarioExhaustsOnValueError(t *testing.T) {
	clk := newImmediateTestClock()
	p := NewPolicy[string]("scenario-1", quietOpts(clk,
		WithRetry(MaxRetries(3), Delay(0), RetryOn(ErrorIs(errValue))),
	)...)

	calls := 0
	_, err := p.Do(context.Background(), func(_ context.Context) (string, error) {
		calls++
		return "", errValue
	})

	if calls != 3 || err != errValue {
		t.Fatalf("calls = %d, err = %v, want 3 and %v", calls, err, errValue)
	}
	if len(clk.getDurations()) != 0 {
		t.Fatal("pacing happened with zero delay")
	}
}

func TestPolicyScenarioTypeErrorFailsFast(t *testing.T) {
	var buf bytes.Buffer
	clk := newImmediateTestClock()
	p := NewPolicy[string]("scenario-2",
		WithClock(clk),
		WithRegistry(NewRegistry()),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithRetry(MaxRetries(3), Delay(time.Second), RetryOn(ErrorIs(errValue))),
	)

	calls := 0
	_, err := p.Do(context.Background(), func(_ context.Context) (string, error) {
		calls++
		return "", errType
	})

	if calls != 1 || err != errType {
		t.Fatalf("calls = %d, err = %v, want 1 and %v", calls, err, errType)
	}
	if len(clk.getDurations()) != 0 {
		t.Fatal("pacing happened for an ineligible failure")
	}
	if buf.Len() != 0 {
		t.Fatalf("log output = %q, want none", buf.String())
	}
}

func TestPolicyScenarioSucceedsOnThirdAttempt(t *testing.T) {
	var buf bytes.Buffer
	clk := newImmediateTestClock()
	p := NewPolicy[int]("scenario-3",
		WithClock(clk),
		WithRegistry(NewRegistry()),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithRetry(MaxRetries(5)),
	)

	calls := 0
	got, err := p.Do(context.Background(), func(_ context.Context) (int, error) {
		calls++
		if calls <= 2 {
			return 0, errValue
		}
		return 42, nil
	})

	if err != nil || got != 42 {
		t.Fatalf("Do() = (%d, %v), want (42, nil)", got, err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if n := strings.Count(buf.String(), "level=WARN"); n != 2 {
		t.Fatalf("warning records = %d, want 2\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "operation=scenario-3") {
		t.Fatalf("log output lacks operation name: %s", buf.String())
	}
}

func TestPolicyNoWarningOnExhaustingFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPolicy[int]("exhaust-log",
		WithClock(newImmediateTestClock()),
		WithRegistry(NewRegistry()),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithRetry(MaxRetries(2), Delay(0)),
	)

	_, _ = p.Do(context.Background(), func(_ context.Context) (int, error) {
		return 0, errValue
	})

	// One retried failure, then the exhausting one.
	if n := strings.Count(buf.String(), "level=WARN"); n != 1 {
		t.Fatalf("warning records = %d, want 1", n)
	}
}

func TestPolicyInvalidRetrySurfacesAtRunTime(t *testing.T) {
	p := NewPolicy[int]("invalid", quietOpts(newImmediateTestClock(),
		WithRetry(MaxRetries(0)),
	)...)

	calls := 0
	_, err := p.Do(context.Background(), func(_ context.Context) (int, error) {
		calls++
		return 1, nil
	})

	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Do() error = %v, want ErrInvalidConfig", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

// ---------------------------------------------------------------------------
// Entries and extension slots
// ---------------------------------------------------------------------------

func TestPolicySlotsInExecutionOrder(t *testing.T) {
	p := NewPolicy[string]("slots", quietOpts(newImmediateTestClock(),
		WithRetry(),
		WithExecutor(ExecutorConfig{"kind": "thread"}),
		WithFallback(FallbackConfig{"value": "n/a"}),
		WithBreaker(nil),
	)...)

	want := []string{slotFallback, slotBreaker, slotExecutor, slotRetry}
	if got := p.Slots(); !slices.Equal(got, want) {
		t.Fatalf("Slots() = %v, want %v", got, want)
	}
}

func TestPolicySlotAccessors(t *testing.T) {
	src := FallbackConfig{"value": "n/a"}
	p := NewPolicy[string]("accessors", quietOpts(newImmediateTestClock(),
		WithFallback(src),
		WithBreaker(nil),
	)...)

	fb, ok := p.Fallback()
	if !ok || fb["value"] != "n/a" {
		t.Fatalf("Fallback() = (%v, %v)", fb, ok)
	}

	// Mutating the source or the returned copy leaves the policy alone.
	src["value"] = "changed"
	fb["value"] = "changed"
	if again, _ := p.Fallback(); again["value"] != "n/a" {
		t.Fatalf("Fallback() after mutation = %v", again)
	}

	if br, ok := p.Breaker(); !ok || len(br) != 0 {
		t.Fatalf("Breaker() = (%v, %v), want (empty, true)", br, ok)
	}
	if _, ok := p.Executor(); ok {
		t.Fatal("Executor() ok = true, want false")
	}
}

func TestExtensionSlotsDoNotChangeOutcome(t *testing.T) {
	p := NewPolicy[string]("inert", quietOpts(newImmediateTestClock(),
		WithFallback(FallbackConfig{"value": "substitute"}),
		WithBreaker(BreakerConfig{"threshold": 1}),
		WithExecutor(ExecutorConfig{"kind": "async"}),
	)...)

	for range 3 {
		calls := 0
		got, err := p.Do(context.Background(), func(_ context.Context) (string, error) {
			calls++
			return "", errValue
		})
		if got != "" || err != errValue || calls != 1 {
			t.Fatalf("Do() = (%q, %v) after %d calls, want (\"\", %v) after 1", got, err, calls, errValue)
		}
	}
}

func TestPolicyLastRetryDeclarationWins(t *testing.T) {
	p := NewPolicy[int]("override", quietOpts(newImmediateTestClock(),
		WithRetry(MaxRetries(5)),
		WithRetry(MaxRetries(2), Delay(0)),
	)...)

	calls := 0
	_, _ = p.Do(context.Background(), func(_ context.Context) (int, error) {
		calls++
		return 0, errValue
	})

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if got := p.Slots(); len(got) != 1 {
		t.Fatalf("Slots() = %v, want a single retry entry", got)
	}
}

func TestPolicyRetryReturnsCopy(t *testing.T) {
	p := NewPolicy[int]("copy", quietOpts(newImmediateTestClock(),
		WithRetry(RetryOn(ErrorIs(errValue))),
	)...)

	s, ok := p.Retry()
	if !ok {
		t.Fatal("Retry() ok = false")
	}
	s.Errors[0] = AnyError

	again, _ := p.Retry()
	if again.Errors.Match(errType) {
		t.Fatal("mutating Retry() result changed the policy")
	}
}

// ---------------------------------------------------------------------------
// Hooks, registry, concurrency
// ---------------------------------------------------------------------------

func TestPolicyHooksReceiveEvents(t *testing.T) {
	var retries atomic.Int32
	p := NewPolicy[int]("hooks", quietOpts(newImmediateTestClock(),
		WithHooks(Hooks{OnRetry: func(RetryEvent) { retries.Add(1) }}),
		WithRetry(MaxRetries(4)),
	)...)

	_, _ = p.Do(context.Background(), func(_ context.Context) (int, error) {
		return 0, errValue
	})

	if got := retries.Load(); got != 3 {
		t.Fatalf("OnRetry = %d, want 3", got)
	}
}

func TestNamedPolicyRegistersWithGivenRegistry(t *testing.T) {
	reg := NewRegistry()
	_ = NewPolicy[int]("registered", WithRegistry(reg), WithLogger(nil))

	inv := reg.Inventory()
	if len(inv.Policies) != 1 || inv.Policies[0].Name != "registered" {
		t.Fatalf("Inventory() = %+v", inv)
	}
}

func TestAnonymousPolicyIsNotRegistered(t *testing.T) {
	reg := NewRegistry()
	_ = NewPolicy[int]("", WithRegistry(reg), WithLogger(nil))

	if n := len(reg.Inventory().Policies); n != 0 {
		t.Fatalf("policies = %d, want 0", n)
	}
}

func TestPolicyConcurrentCallsHaveIndependentBudgets(t *testing.T) {
	p := NewPolicy[int]("concurrent", quietOpts(newImmediateTestClock(),
		WithRetry(MaxRetries(3), Delay(0)),
	)...)

	var total atomic.Int32
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Do(context.Background(), func(_ context.Context) (int, error) {
				total.Add(1)
				return 0, errValue
			})
		}()
	}

	wg.Wait()

	if got := total.Load(); got != 24 {
		t.Fatalf("total calls = %d, want 24", got)
	}
}

func TestPolicyRepeatedHooksAccumulate(t *testing.T) {
	var first, second atomic.Int32
	p := NewPolicy[int]("hooks-merge", quietOpts(newImmediateTestClock(),
		WithHooks(Hooks{OnRetry: func(RetryEvent) { first.Add(1) }}),
		WithHooks(Hooks{OnRetry: func(RetryEvent) { second.Add(1) }}),
		WithRetry(MaxRetries(2)),
	)...)

	_, _ = p.Do(context.Background(), func(_ context.Context) (int, error) {
		return 0, errValue
	})

	if first.Load() != 1 || second.Load() != 1 {
		t.Fatalf("OnRetry calls = (%d, %d), want (1, 1)", first.Load(), second.Load())
	}
}
