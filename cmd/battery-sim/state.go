package main

import (
	"log/slog"

	"github.com/openfmb-sim/battery-sim-go/pkg/persistence"
	"github.com/openfmb-sim/battery-sim-go/pkg/simulator"
)

// restoreState loads saved state into battery. State saved for another
// logical device is ignored.
func restoreState(store *persistence.StateStore, logicalDeviceID string, battery *simulator.Battery, logger *slog.Logger) error {
	saved, err := store.Load()
	if err != nil {
		return err
	}
	if saved == nil {
		return nil
	}
	if saved.LogicalDeviceID != logicalDeviceID {
		logger.Warn("Ignoring saved state for another device",
			"path", store.Path(), "saved_device", saved.LogicalDeviceID)
		return nil
	}

	battery.Restore(simulator.State{
		StateOfCharge: saved.StateOfCharge,
		PowerKW:       saved.PowerKW,
		Mode:          saved.Mode,
		Islanded:      saved.Islanded,
		Connected:     saved.Connected,
	})
	logger.Info("Battery state restored",
		"saved_at", saved.SavedAt,
		"soc", saved.StateOfCharge,
		"mode", simulator.ModeName(saved.Mode))
	return nil
}

func saveState(store *persistence.StateStore, logicalDeviceID string, battery *simulator.Battery) error {
	s := battery.State()
	return store.Save(&persistence.BatteryState{
		LogicalDeviceID: logicalDeviceID,
		StateOfCharge:   s.StateOfCharge,
		PowerKW:         s.PowerKW,
		Mode:            s.Mode,
		Islanded:        s.Islanded,
		Connected:       s.Connected,
	})
}
