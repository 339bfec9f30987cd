package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateStore(t *testing.T) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))

		saved := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		state := &BatteryState{
			SavedAt:         saved,
			LogicalDeviceID: "LD1",
			StateOfCharge:   0.73,
			PowerKW:         -2.5,
			Mode:            2,
			Islanded:        true,
			Connected:       true,
		}
		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Version != StateVersion {
			t.Errorf("Version = %d, want %d", got.Version, StateVersion)
		}
		if !got.SavedAt.Equal(saved) {
			t.Errorf("SavedAt = %v, want %v", got.SavedAt, saved)
		}
		if got.LogicalDeviceID != "LD1" || got.StateOfCharge != 0.73 || got.PowerKW != -2.5 {
			t.Errorf("Load() = %+v", got)
		}
		if got.Mode != 2 || !got.Islanded || !got.Connected {
			t.Errorf("Load() = %+v", got)
		}
	})

	t.Run("SaveSetsSavedAt", func(t *testing.T) {
		store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))
		state := &BatteryState{LogicalDeviceID: "LD1"}
		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if state.SavedAt.IsZero() {
			t.Error("SavedAt not set")
		}
	})

	t.Run("SaveCreatesDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
		if err := NewStateStore(path).Save(&BatteryState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("state file missing: %v", err)
		}
	})

	t.Run("SaveLeavesNoTempFiles", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStateStore(filepath.Join(dir, "state.json"))
		for i := 0; i < 3; i++ {
			if err := store.Save(&BatteryState{Mode: i}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("dir has %d entries, want 1", len(entries))
		}
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		store := NewStateStore(filepath.Join(t.TempDir(), "nonexistent.json"))
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %v, want nil for non-existent file", got)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewStateStore(path).Load(); err == nil {
			t.Error("Load() expected error for corrupt file")
		}
	})

	t.Run("LoadNewerVersion", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := NewStateStore(path).Load()
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("Load() error = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))
		if err := store.Save(&BatteryState{}); err != nil {
			t.Fatal(err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if got, _ := store.Load(); got != nil {
			t.Error("state still present after Clear()")
		}
		if err := store.Clear(); err != nil {
			t.Errorf("Clear() on missing file error = %v", err)
		}
	})
}
