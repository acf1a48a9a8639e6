package log

import (
	"time"
)

// Event represents a kit log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Source is the subsystem that captured the event.
	Source Source `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// KitID identifies the kit (e.g. "iikit3").
	KitID string `cbor:"4,keyasint,omitempty"`

	// SessionID identifies the telemetry session (UUID), when the
	// event belongs to one.
	SessionID string `cbor:"5,keyasint,omitempty"`

	// RemoteAddr is the peer address for telemetry events (IP:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Pin         *PinEvent         `cbor:"10,keyasint,omitempty"` // Pin toggle
	Display     *DisplayEvent     `cbor:"11,keyasint,omitempty"` // Display write
	Sample      *SampleEvent      `cbor:"12,keyasint,omitempty"` // Telemetry sample
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Lifecycle state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Source indicates which subsystem captured the event.
type Source uint8

const (
	// SourceLoop is the polling loop controller.
	SourceLoop Source = 0
	// SourceHAL is the hardware abstraction layer.
	SourceHAL Source = 1
	// SourceTelemetry is the UDP telemetry publisher.
	SourceTelemetry Source = 2
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceLoop:
		return "LOOP"
	case SourceHAL:
		return "HAL"
	case SourceTelemetry:
		return "TELEMETRY"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPin indicates a pin level change.
	CategoryPin Category = 0
	// CategoryDisplay indicates a display line write.
	CategoryDisplay Category = 1
	// CategorySample indicates a streamed telemetry sample.
	CategorySample Category = 2
	// CategoryState indicates a lifecycle state change.
	CategoryState Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPin:
		return "PIN"
	case CategoryDisplay:
		return "DISPLAY"
	case CategorySample:
		return "SAMPLE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PinEvent captures a digital pin transition.
type PinEvent struct {
	// Pin is the pin number.
	Pin uint8 `cbor:"1,keyasint"`

	// OldLevel is the level before the write (0 or 1).
	OldLevel uint8 `cbor:"2,keyasint"`

	// NewLevel is the level after the write (0 or 1).
	NewLevel uint8 `cbor:"3,keyasint"`
}

// DisplayEvent captures a display line write.
type DisplayEvent struct {
	// Line is the display line index.
	Line int `cbor:"1,keyasint"`

	// Text is the text written to the line.
	Text string `cbor:"2,keyasint"`
}

// SampleEvent captures a telemetry sample sent to a plot client.
type SampleEvent struct {
	// Var is the variable name.
	Var string `cbor:"1,keyasint"`

	// TimestampMS is the sample timestamp in unix milliseconds.
	TimestampMS int64 `cbor:"2,keyasint"`

	// Value is the sample value.
	Value float64 `cbor:"3,keyasint"`
}

// StateChangeEvent captures lifecycle state changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityLoop indicates a loop controller state change.
	StateEntityLoop StateEntity = 0
	// StateEntityPublisher indicates a telemetry publisher state change.
	StateEntityPublisher StateEntity = 1
	// StateEntitySession indicates a telemetry session state change.
	StateEntitySession StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityLoop:
		return "LOOP"
	case StateEntityPublisher:
		return "PUBLISHER"
	case StateEntitySession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
