package asyncdelay

import (
	"errors"
	"time"

	"github.com/lasec-lab/iikit-go/pkg/clock"
)

// ErrInvalidInterval is returned when a delay is created with a
// zero or negative interval.
var ErrInvalidInterval = errors.New("invalid delay interval")

// Delay is an edge-triggered, auto-rearming elapsed-time gate.
//
// Expired reports true exactly once per elapsed interval and rearms
// itself at the moment of the query that observed the expiry. The next
// expiry is therefore one interval after that query, not a fixed
// multiple of the construction time.
//
// A Delay is owned by a single polling loop and is not safe for
// concurrent use.
type Delay struct {
	interval  time.Duration
	lastFired time.Time
	clk       clock.Clock
}

// New creates a Delay with the given interval, armed at the current
// time of clk. A nil clk defaults to the system clock.
func New(interval time.Duration, clk clock.Clock) (*Delay, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Delay{
		interval:  interval,
		lastFired: clk.Now(),
		clk:       clk,
	}, nil
}

// MustNew is New but panics on an invalid interval. Intended for
// fixed intervals known at compile time.
func MustNew(interval time.Duration, clk clock.Clock) *Delay {
	d, err := New(interval, clk)
	if err != nil {
		panic(err)
	}
	return d
}

// Expired reports whether at least one interval has elapsed since the
// delay was last armed. When it returns true the delay rearms at the
// current time, so repeated queries within the same interval return
// false.
func (d *Delay) Expired() bool {
	now := d.clk.Now()
	if now.Sub(d.lastFired) < d.interval {
		return false
	}
	d.lastFired = now
	return true
}

// Reset rearms the delay at the current time without firing.
func (d *Delay) Reset() {
	d.lastFired = d.clk.Now()
}

// Interval returns the configured interval.
func (d *Delay) Interval() time.Duration {
	return d.interval
}

// Remaining returns the time left until the next expiry, or zero if
// the delay is already due.
func (d *Delay) Remaining() time.Duration {
	remaining := d.interval - d.clk.Now().Sub(d.lastFired)
	if remaining < 0 {
		return 0
	}
	return remaining
}
