package hal

import (
	"fmt"
	"sync"
)

// DisplayLines is the number of text lines on the kit's display.
const DisplayLines = 4

// SimKit is an in-memory Kit for desktop runs and tests.
// It is safe for concurrent use: the polling loop owns the writes, but
// the telemetry publisher and the state store read pin and display
// state from other goroutines.
type SimKit struct {
	mu sync.RWMutex

	setup bool
	pins  map[Pin]PinLevel
	modes map[Pin]PinMode
	lines [DisplayLines]string

	ticks  uint64
	onTick []func()
}

// NewSimKit creates a simulated kit with all pins Low and the display
// blank.
func NewSimKit() *SimKit {
	return &SimKit{
		pins:  make(map[Pin]PinLevel),
		modes: make(map[Pin]PinMode),
	}
}

// Setup initializes the kit. Calling Setup twice is an error, matching
// the once-at-boot semantics of the firmware.
func (k *SimKit) Setup() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.setup {
		return fmt.Errorf("kit already set up")
	}
	k.setup = true
	return nil
}

// Tick runs per-iteration housekeeping: it bumps the iteration counter
// and invokes registered hooks on the loop goroutine.
func (k *SimKit) Tick() {
	k.mu.Lock()
	k.ticks++
	hooks := k.onTick
	k.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// OnTick registers a housekeeping hook invoked on every loop iteration
// from the loop goroutine. Hooks must not block.
func (k *SimKit) OnTick(fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.onTick = append(k.onTick, fn)
}

// Ticks returns the number of housekeeping iterations so far.
func (k *SimKit) Ticks() uint64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.ticks
}

// GPIO returns the kit's pin interface.
func (k *SimKit) GPIO() GPIO { return (*simGPIO)(k) }

// Display returns the kit's display.
func (k *SimKit) Display() Display { return (*simDisplay)(k) }

// PinSnapshot returns a copy of all pin levels, for persistence.
func (k *SimKit) PinSnapshot() map[Pin]PinLevel {
	k.mu.RLock()
	defer k.mu.RUnlock()

	snap := make(map[Pin]PinLevel, len(k.pins))
	for pin, level := range k.pins {
		snap[pin] = level
	}
	return snap
}

// RestorePins sets pin levels from a saved snapshot.
func (k *SimKit) RestorePins(levels map[Pin]PinLevel) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for pin, level := range levels {
		k.pins[pin] = level
	}
}

// DisplaySnapshot returns a copy of all display lines.
func (k *SimKit) DisplaySnapshot() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	lines := make([]string, DisplayLines)
	copy(lines, k.lines[:])
	return lines
}

// RestoreDisplay sets display lines from a saved snapshot. Extra lines
// beyond the display size are dropped.
func (k *SimKit) RestoreDisplay(lines []string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	copy(k.lines[:], lines)
}

// simGPIO exposes the kit's pin state through the GPIO interface.
type simGPIO SimKit

func (g *simGPIO) PinMode(pin Pin, mode PinMode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modes[pin] = mode
}

func (g *simGPIO) DigitalRead(pin Pin) PinLevel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pins[pin]
}

func (g *simGPIO) DigitalWrite(pin Pin, level PinLevel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pins[pin] = level
}

// simDisplay exposes the kit's display lines through the Display
// interface.
type simDisplay SimKit

func (d *simDisplay) SetText(line int, text string) {
	if line < 0 || line >= DisplayLines {
		// Out-of-range writes vanish, like on the hardware.
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines[line] = text
}

func (d *simDisplay) Line(line int) string {
	if line < 0 || line >= DisplayLines {
		return ""
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lines[line]
}

// Compile-time interface satisfaction checks.
var (
	_ Kit     = (*SimKit)(nil)
	_ GPIO    = (*simGPIO)(nil)
	_ Display = (*simDisplay)(nil)
)
