package log

import (
	"path/filepath"
	"testing"
	"time"
)

// writeTestLog writes a fixed set of events and returns the file path.
func writeTestLog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.klog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, Source: SourceLoop, Category: CategoryPin, KitID: "iikit1",
			Pin: &PinEvent{Pin: 25, NewLevel: 1}},
		{Timestamp: base.Add(time.Second), Source: SourceLoop, Category: CategoryDisplay, KitID: "iikit1",
			Display: &DisplayEvent{Line: 2, Text: "P1:"}},
		{Timestamp: base.Add(2 * time.Second), Source: SourceTelemetry, Category: CategorySample,
			KitID: "iikit2", SessionID: "sess-a",
			Sample: &SampleEvent{Var: "led", TimestampMS: 1, Value: 1}},
		{Timestamp: base.Add(3 * time.Second), Source: SourceTelemetry, Category: CategoryState,
			KitID: "iikit2", SessionID: "sess-b",
			StateChange: &StateChangeEvent{Entity: StateEntitySession, NewState: "CONNECTED"}},
	}
	for _, e := range events {
		logger.Log(e)
	}
	return path
}

func TestReaderNoFilter(t *testing.T) {
	path := writeTestLog(t)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 4 {
		t.Errorf("read %d events, want 4", len(events))
	}
}

func TestReaderFilterBySource(t *testing.T) {
	path := writeTestLog(t)

	src := SourceTelemetry
	reader, err := NewFilteredReader(path, Filter{Source: &src})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("read %d telemetry events, want 2", len(events))
	}
	for _, e := range events {
		if e.Source != SourceTelemetry {
			t.Errorf("Source = %v, want TELEMETRY", e.Source)
		}
	}
}

func TestReaderFilterByCategory(t *testing.T) {
	path := writeTestLog(t)

	cat := CategoryPin
	reader, err := NewFilteredReader(path, Filter{Category: &cat})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("read %d pin events, want 1", len(events))
	}
	if events[0].Pin == nil || events[0].Pin.Pin != 25 {
		t.Errorf("pin payload = %+v", events[0].Pin)
	}
}

func TestReaderFilterByKitAndSession(t *testing.T) {
	path := writeTestLog(t)

	reader, err := NewFilteredReader(path, Filter{KitID: "iikit2", SessionID: "sess-a"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("read %d events, want 1", len(events))
	}
	if events[0].SessionID != "sess-a" {
		t.Errorf("SessionID = %q, want %q", events[0].SessionID, "sess-a")
	}
}

func TestReaderFilterByTimeRange(t *testing.T) {
	path := writeTestLog(t)

	start := time.Date(2026, 8, 23, 10, 0, 1, 0, time.UTC)
	end := time.Date(2026, 8, 23, 10, 0, 3, 0, time.UTC)
	reader, err := NewFilteredReader(path, Filter{TimeStart: &start, TimeEnd: &end})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	// Events at +1s and +2s; the +3s event is excluded (end-exclusive).
	if len(events) != 2 {
		t.Errorf("read %d events in range, want 2", len(events))
	}
}

func TestReaderMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.klog"))
	if err == nil {
		t.Error("NewReader on a missing file should fail")
	}
}
