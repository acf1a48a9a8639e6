package loop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lasec-lab/iikit-go/pkg/asyncdelay"
	"github.com/lasec-lab/iikit-go/pkg/clock"
	"github.com/lasec-lab/iikit-go/pkg/hal"
	"github.com/lasec-lab/iikit-go/pkg/log"
)

// Controller errors.
var (
	ErrNilKit         = errors.New("kit is required")
	ErrAlreadyRunning = errors.New("controller already running")
)

// DefaultPollInterval is how long the loop sleeps between iterations
// when running against the system clock. It must stay well below the
// smallest task interval; the firmware loop spins freely, the Go loop
// yields instead of pinning a core.
const DefaultPollInterval = 1 * time.Millisecond

// Config configures a loop Controller.
type Config struct {
	// Kit is the hardware surface the loop runs against. Required.
	Kit hal.Kit

	// Clock is the time source for task timers.
	// Defaults to the system clock.
	Clock clock.Clock

	// PollInterval is the idle sleep between iterations.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// KitID tags log events (e.g. "iikit3"). Optional.
	KitID string

	// Logger for event capture (optional).
	Logger log.Logger
}

// task pairs a periodic timer with its action.
type task struct {
	name   string
	delay  *asyncdelay.Delay
	action func()
}

// Controller owns the kit and an ordered list of periodic tasks.
// Timers are values held by the controller; nothing in this package is
// process-global. All task actions run on the loop goroutine.
type Controller struct {
	kit    hal.Kit
	clk    clock.Clock
	poll   time.Duration
	kitID  string
	logger log.Logger

	tasks   []task
	running atomic.Bool
}

// NewController creates a loop controller for the given kit.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Kit == nil {
		return nil, ErrNilKit
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.SystemClock{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}

	return &Controller{
		kit:    cfg.Kit,
		clk:    cfg.Clock,
		poll:   cfg.PollInterval,
		kitID:  cfg.KitID,
		logger: cfg.Logger,
	}, nil
}

// Kit returns the hardware surface the controller runs against.
func (c *Controller) Kit() hal.Kit { return c.kit }

// AddTask registers a periodic task. Tasks are polled in registration
// order on every loop iteration and fire when their interval elapses.
// Tasks cannot be added while the loop is running.
func (c *Controller) AddTask(name string, interval time.Duration, action func()) error {
	if c.running.Load() {
		return ErrAlreadyRunning
	}
	if action == nil {
		return fmt.Errorf("task %q: action is required", name)
	}

	delay, err := asyncdelay.New(interval, c.clk)
	if err != nil {
		return fmt.Errorf("task %q: %w", name, err)
	}

	c.tasks = append(c.tasks, task{name: name, delay: delay, action: action})
	return nil
}

// Blink returns an action that toggles the given pin: it reads the
// current level and writes the logical negation. The pin is configured
// as an output immediately, mirroring the firmware's setup().
func (c *Controller) Blink(pin hal.Pin) func() {
	gpio := c.kit.GPIO()
	gpio.PinMode(pin, hal.Output)

	return func() {
		old := gpio.DigitalRead(pin)
		gpio.DigitalWrite(pin, old.Invert())

		c.logger.Log(log.Event{
			Timestamp: c.clk.Now(),
			Source:    log.SourceLoop,
			Category:  log.CategoryPin,
			KitID:     c.kitID,
			Pin: &log.PinEvent{
				Pin:      uint8(pin),
				OldLevel: uint8(old),
				NewLevel: uint8(old.Invert()),
			},
		})
	}
}

// RefreshDisplay returns an action that writes the given labels to
// their display lines. Writing is idempotent; a display event is only
// logged when a line's content actually changes.
func (c *Controller) RefreshDisplay(labels map[int]string) func() {
	disp := c.kit.Display()

	return func() {
		for line, text := range labels {
			changed := disp.Line(line) != text
			disp.SetText(line, text)
			if !changed {
				continue
			}
			c.logger.Log(log.Event{
				Timestamp: c.clk.Now(),
				Source:    log.SourceLoop,
				Category:  log.CategoryDisplay,
				KitID:     c.kitID,
				Display: &log.DisplayEvent{
					Line: line,
					Text: text,
				},
			})
		}
	}
}

// Step advances the loop by exactly one iteration: housekeeping tick,
// then every task whose timer expired, in registration order. Exposed
// so tests can drive the loop deterministically with a fake clock.
func (c *Controller) Step() {
	c.kit.Tick()
	for i := range c.tasks {
		if c.tasks[i].delay.Expired() {
			c.tasks[i].action()
		}
	}
}

// Run starts the polling loop and blocks until ctx is canceled, the
// software stand-in for power loss. It calls the kit's Setup once
// before the first iteration.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	if err := c.kit.Setup(); err != nil {
		return fmt.Errorf("kit setup: %w", err)
	}

	c.logState("", "RUNNING", "")

	for {
		select {
		case <-ctx.Done():
			c.logState("RUNNING", "STOPPED", ctx.Err().Error())
			return ctx.Err()
		default:
		}

		c.Step()
		time.Sleep(c.poll)
	}
}

// logState records a loop lifecycle transition.
func (c *Controller) logState(old, new, reason string) {
	c.logger.Log(log.Event{
		Timestamp: c.clk.Now(),
		Source:    log.SourceLoop,
		Category:  log.CategoryState,
		KitID:     c.kitID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityLoop,
			OldState: old,
			NewState: new,
			Reason:   reason,
		},
	})
}
