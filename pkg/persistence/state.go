package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrUnsupportedVersion is returned when a state file was written by a
// newer format version.
var ErrUnsupportedVersion = errors.New("unsupported state file version")

// BatteryState is the runtime state of a simulated battery.
type BatteryState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// LogicalDeviceID identifies the battery the state belongs to.
	LogicalDeviceID string `json:"logical_device_id"`

	// StateOfCharge is in [0, 1].
	StateOfCharge float64 `json:"state_of_charge"`

	// PowerKW is the real power setpoint (positive = charging).
	PowerKW float64 `json:"power_kw"`

	// Mode is the operating mode code.
	Mode int `json:"mode"`

	Islanded  bool `json:"islanded,omitempty"`
	Connected bool `json:"connected"`
}

// StateStore manages persistence of battery state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.path
}

// Save persists the state to disk.
func (s *StateStore) Save(state *BatteryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// Load reads the state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *StateStore) Load() (*BatteryState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &BatteryState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, state.Version)
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
