package hal

// Pin identifies a GPIO pin on the kit.
type Pin uint8

// Kit pin assignments, matching the dev-kit silkscreen.
const (
	PinD1 Pin = 25
	PinD2 Pin = 26
	PinD3 Pin = 32
	PinD4 Pin = 33
)

// PinLevel is the logic level of a digital pin.
type PinLevel uint8

const (
	// Low is logic level 0.
	Low PinLevel = 0
	// High is logic level 1.
	High PinLevel = 1
)

// String returns the level name.
func (l PinLevel) String() string {
	switch l {
	case Low:
		return "LOW"
	case High:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Invert returns the logical negation of the level.
func (l PinLevel) Invert() PinLevel {
	if l == Low {
		return High
	}
	return Low
}

// PinMode configures a pin's direction.
type PinMode uint8

const (
	// Input configures the pin for reading.
	Input PinMode = 0
	// Output configures the pin for writing.
	Output PinMode = 1
)

// String returns the mode name.
func (m PinMode) String() string {
	switch m {
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// GPIO provides digital pin I/O. Operations are infallible at this
// abstraction level: faults below it (disconnected pin, missing
// hardware) are absorbed silently, matching the firmware HAL.
type GPIO interface {
	// PinMode configures the direction of a pin.
	PinMode(pin Pin, mode PinMode)

	// DigitalRead returns the current level of a pin. Pins that were
	// never written read Low.
	DigitalRead(pin Pin) PinLevel

	// DigitalWrite sets the level of a pin.
	DigitalWrite(pin Pin, level PinLevel)
}

// Display is the kit's character display. Writing the same text to a
// line repeatedly is harmless; out-of-range lines are ignored.
type Display interface {
	// SetText writes text to the given display line.
	SetText(line int, text string)

	// Line returns the current text of the given line, or "" for
	// out-of-range lines.
	Line(line int) string
}

// Kit bundles the hardware surface the control loop runs against:
// pin I/O, the display, and the kit-wide housekeeping pair that the
// firmware exposes as setup()/loop().
type Kit interface {
	// Setup initializes the kit. It is called once before the loop
	// starts.
	Setup() error

	// Tick runs per-iteration housekeeping. The polling loop calls it
	// on every iteration before dispatching tasks.
	Tick()

	// GPIO returns the kit's pin interface.
	GPIO() GPIO

	// Display returns the kit's display.
	Display() Display
}
