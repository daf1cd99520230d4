package failsafe

import (
	"time"

	"github.com/coder/quartz"
)

// Clock creates the timers that pace retries, so pacing can be tested
// deterministically. Production code uses [RealClock]; tests may
// substitute a fake implementation or a [QuartzClock] over a mock.
type Clock interface {
	// NewTimer creates a new [Timer] that will fire after duration d.
	NewTimer(d time.Duration) Timer
}

// Timer is the part of [time.Timer] the retry loop waits on.
type Timer interface {
	// C returns the channel on which the timer's firing time is delivered.
	C() <-chan time.Time
	// Stop prevents the timer from firing and reports whether it was stopped
	// before it fired.
	Stop() bool
}

// RealClock is a zero-value [Clock] backed by the real [time] package.
// It is safe for concurrent use because it holds no mutable state.
type RealClock struct{}

// NewTimer creates a real [Timer] that fires after d via [time.NewTimer].
func (RealClock) NewTimer(d time.Duration) Timer {
	return realTimer{inner: time.NewTimer(d)}
}

type realTimer struct {
	inner *time.Timer
}

func (t realTimer) C() <-chan time.Time { return t.inner.C }
func (t realTimer) Stop() bool          { return t.inner.Stop() }

// QuartzClock adapts a [quartz.Clock] to [Clock]. Pair it with
// quartz.NewMock in tests to step through pacing intervals explicitly.
type QuartzClock struct {
	inner quartz.Clock
	tags  []string
}

// NewQuartzClock wraps c. Every timer created through the adapter carries
// tags, which lets quartz traps single out pacing timers.
func NewQuartzClock(c quartz.Clock, tags ...string) *QuartzClock {
	return &QuartzClock{inner: c, tags: tags}
}

// NewTimer creates a quartz timer that fires after d.
func (c *QuartzClock) NewTimer(d time.Duration) Timer {
	return &quartzTimer{inner: c.inner.NewTimer(d, c.tags...), tags: c.tags}
}

type quartzTimer struct {
	inner *quartz.Timer
	tags  []string
}

func (t *quartzTimer) C() <-chan time.Time { return t.inner.C }
func (t *quartzTimer) Stop() bool          { return t.inner.Stop(t.tags...) }
