package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfmb-sim/battery-sim-go/pkg/persistence"
	"github.com/openfmb-sim/battery-sim-go/pkg/simulator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveAndRestoreState(t *testing.T) {
	store := persistence.NewStateStore(filepath.Join(t.TempDir(), "bess.json"))

	src := simulator.NewBattery(simulator.DefaultConfig())
	src.SetMode(simulator.ModeCharge)
	src.SetPower(4)
	src.SetIslanded(true)
	require.NoError(t, saveState(store, "LD1", src))

	dst := simulator.NewBattery(simulator.DefaultConfig())
	require.NoError(t, restoreState(store, "LD1", dst, discardLogger()))
	assert.Equal(t, src.State(), dst.State())
}

func TestRestoreStateIgnoresOtherDevice(t *testing.T) {
	store := persistence.NewStateStore(filepath.Join(t.TempDir(), "bess.json"))
	require.NoError(t, store.Save(&persistence.BatteryState{LogicalDeviceID: "LD2", StateOfCharge: 0.9, Connected: true}))

	b := simulator.NewBattery(simulator.DefaultConfig())
	require.NoError(t, restoreState(store, "LD1", b, discardLogger()))
	assert.Equal(t, 0.5, b.State().StateOfCharge)
}

func TestRestoreStateMissingFile(t *testing.T) {
	store := persistence.NewStateStore(filepath.Join(t.TempDir(), "none.json"))
	b := simulator.NewBattery(simulator.DefaultConfig())
	require.NoError(t, restoreState(store, "LD1", b, discardLogger()))
	assert.Equal(t, 0.5, b.State().StateOfCharge)
}
