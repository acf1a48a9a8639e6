package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lasec-lab/iikit-go/pkg/hal"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// KitState contains the runtime state of a simulated kit.
type KitState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// KitID is the kit number.
	KitID int `json:"kit_id"`

	// Pins holds pin levels keyed by pin number.
	Pins map[hal.Pin]hal.PinLevel `json:"pins,omitempty"`

	// DisplayLines holds the display contents, line by line.
	DisplayLines []string `json:"display_lines,omitempty"`

	// TelemetryTarget is the last registered plot client ("ip:port"),
	// recorded for diagnostics. Streaming does not resume on restart;
	// the client must CONNECT again, like after a hardware reset.
	TelemetryTarget string `json:"telemetry_target,omitempty"`
}

// StateStore manages persistence of kit state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new kit state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Save persists the kit state to disk.
func (s *StateStore) Save(state *KitState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the kit state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *StateStore) Load() (*KitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &KitState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Snapshot builds a KitState from a simulated kit.
func Snapshot(kit *hal.SimKit, kitID int, telemetryTarget string) *KitState {
	return &KitState{
		KitID:           kitID,
		Pins:            kit.PinSnapshot(),
		DisplayLines:    kit.DisplaySnapshot(),
		TelemetryTarget: telemetryTarget,
	}
}

// Restore applies a saved state to a simulated kit.
func Restore(kit *hal.SimKit, state *KitState) {
	if state == nil {
		return
	}
	kit.RestorePins(state.Pins)
	kit.RestoreDisplay(state.DisplayLines)
}
