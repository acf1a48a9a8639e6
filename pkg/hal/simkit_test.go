package hal

import (
	"testing"
)

func TestPinLevelInvert(t *testing.T) {
	if Low.Invert() != High {
		t.Error("Low.Invert() should be High")
	}
	if High.Invert() != Low {
		t.Error("High.Invert() should be Low")
	}

	// Involution: two inversions restore the level.
	for _, level := range []PinLevel{Low, High} {
		if got := level.Invert().Invert(); got != level {
			t.Errorf("%v.Invert().Invert() = %v, want %v", level, got, level)
		}
	}
}

func TestPinLevelString(t *testing.T) {
	tests := []struct {
		level PinLevel
		want  string
	}{
		{Low, "LOW"},
		{High, "HIGH"},
		{PinLevel(7), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("PinLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestPinModeString(t *testing.T) {
	tests := []struct {
		mode PinMode
		want string
	}{
		{Input, "INPUT"},
		{Output, "OUTPUT"},
		{PinMode(7), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("PinMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestSimKitSetupOnce(t *testing.T) {
	kit := NewSimKit()

	if err := kit.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := kit.Setup(); err == nil {
		t.Error("second Setup() should return an error")
	}
}

func TestSimKitDigitalReadDefaultsLow(t *testing.T) {
	kit := NewSimKit()
	gpio := kit.GPIO()

	if got := gpio.DigitalRead(PinD1); got != Low {
		t.Errorf("DigitalRead on untouched pin = %v, want Low", got)
	}
}

func TestSimKitDigitalWriteRead(t *testing.T) {
	kit := NewSimKit()
	gpio := kit.GPIO()

	gpio.PinMode(PinD1, Output)
	gpio.DigitalWrite(PinD1, High)
	if got := gpio.DigitalRead(PinD1); got != High {
		t.Errorf("DigitalRead(PinD1) = %v, want High", got)
	}

	// Other pins are unaffected.
	if got := gpio.DigitalRead(PinD2); got != Low {
		t.Errorf("DigitalRead(PinD2) = %v, want Low", got)
	}

	gpio.DigitalWrite(PinD1, Low)
	if got := gpio.DigitalRead(PinD1); got != Low {
		t.Errorf("DigitalRead(PinD1) after write Low = %v, want Low", got)
	}
}

func TestSimKitDisplay(t *testing.T) {
	kit := NewSimKit()
	disp := kit.Display()

	disp.SetText(2, "P1:")
	disp.SetText(3, "T1:")

	if got := disp.Line(2); got != "P1:" {
		t.Errorf("Line(2) = %q, want %q", got, "P1:")
	}
	if got := disp.Line(3); got != "T1:" {
		t.Errorf("Line(3) = %q, want %q", got, "T1:")
	}
	if got := disp.Line(0); got != "" {
		t.Errorf("Line(0) = %q, want empty", got)
	}
}

func TestSimKitDisplayOutOfRange(t *testing.T) {
	kit := NewSimKit()
	disp := kit.Display()

	// Out-of-range writes are silently dropped.
	disp.SetText(-1, "x")
	disp.SetText(DisplayLines, "x")

	if got := disp.Line(-1); got != "" {
		t.Errorf("Line(-1) = %q, want empty", got)
	}
	if got := disp.Line(DisplayLines); got != "" {
		t.Errorf("Line(%d) = %q, want empty", DisplayLines, got)
	}
}

func TestSimKitTick(t *testing.T) {
	kit := NewSimKit()

	var hookCalls int
	kit.OnTick(func() { hookCalls++ })

	kit.Tick()
	kit.Tick()
	kit.Tick()

	if got := kit.Ticks(); got != 3 {
		t.Errorf("Ticks() = %d, want 3", got)
	}
	if hookCalls != 3 {
		t.Errorf("hook called %d times, want 3", hookCalls)
	}
}

func TestSimKitSnapshots(t *testing.T) {
	kit := NewSimKit()
	kit.GPIO().DigitalWrite(PinD1, High)
	kit.Display().SetText(2, "P1:")

	pins := kit.PinSnapshot()
	if pins[PinD1] != High {
		t.Errorf("PinSnapshot()[PinD1] = %v, want High", pins[PinD1])
	}

	lines := kit.DisplaySnapshot()
	if len(lines) != DisplayLines {
		t.Fatalf("DisplaySnapshot() has %d lines, want %d", len(lines), DisplayLines)
	}
	if lines[2] != "P1:" {
		t.Errorf("DisplaySnapshot()[2] = %q, want %q", lines[2], "P1:")
	}

	// Restore onto a fresh kit.
	fresh := NewSimKit()
	fresh.RestorePins(pins)
	fresh.RestoreDisplay(lines)

	if got := fresh.GPIO().DigitalRead(PinD1); got != High {
		t.Errorf("restored DigitalRead(PinD1) = %v, want High", got)
	}
	if got := fresh.Display().Line(2); got != "P1:" {
		t.Errorf("restored Line(2) = %q, want %q", got, "P1:")
	}
}

func TestSimKitSnapshotIsCopy(t *testing.T) {
	kit := NewSimKit()
	kit.GPIO().DigitalWrite(PinD1, High)

	snap := kit.PinSnapshot()
	snap[PinD1] = Low

	if got := kit.GPIO().DigitalRead(PinD1); got != High {
		t.Error("mutating a snapshot must not affect the kit")
	}
}
