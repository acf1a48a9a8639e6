package clock

import (
	"sync"
	"time"
)

// Clock abstracts the time source so periodic logic can be driven by a
// fake clock in tests. Implementations must return monotonically
// non-decreasing times.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock reads the real system clock. The time.Time values it
// returns carry Go's monotonic clock reading, so elapsed-time math is
// immune to wall-clock adjustments.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time { return time.Now() }

// Compile-time interface satisfaction check.
var _ Clock = SystemClock{}

// FakeClock is a manually advanced clock for tests.
// It is safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a FakeClock starting at the given time.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative values are ignored so
// the clock stays monotonic.
func (c *FakeClock) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t if t is not before the current fake time.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Before(c.now) {
		return
	}
	c.now = t
}

// Compile-time interface satisfaction check.
var _ Clock = (*FakeClock)(nil)
