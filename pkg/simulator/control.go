package simulator

import (
	"errors"
	"fmt"
	"math"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// Control errors.
var (
	ErrWrongDevice    = errors.New("control addressed to another device")
	ErrUnknownControl = errors.New("unknown control type")
)

// ApplyControl applies a control profile addressed to logicalDeviceID.
// An islanding control islands the battery; a setpoint control returns
// it to grid mode and applies each setpoint in order. Nothing is applied
// if any setpoint has an unknown control type. It returns the control
// types applied.
func (b *Battery) ApplyControl(logicalDeviceID string, p *schema.BatteryControlProfile) ([]string, error) {
	if p.LogicalDeviceID != logicalDeviceID {
		return nil, fmt.Errorf("%w: %q", ErrWrongDevice, p.LogicalDeviceID)
	}

	ctrl := p.BatterySystemControl
	for _, sp := range ctrl.SetPoints {
		switch sp.ControlType {
		case schema.ControlTypeSetRealPower, schema.ControlTypeSetMode:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownControl, sp.ControlType)
		}
	}

	if ctrl.IsIslanded {
		b.SetIslanded(true)
		return []string{"Islanded"}, nil
	}

	b.SetIslanded(false)
	applied := make([]string, 0, len(ctrl.SetPoints))
	for _, sp := range ctrl.SetPoints {
		switch sp.ControlType {
		case schema.ControlTypeSetRealPower:
			b.SetPower(setPointKW(sp))
		case schema.ControlTypeSetMode:
			b.SetMode(int(math.Round(float64(sp.Value))))
		}
		applied = append(applied, sp.ControlType)
	}
	return applied, nil
}

// setPointKW converts a power setpoint to kW.
func setPointKW(sp schema.SetPoint) float64 {
	return float64(sp.Value) * sp.Multiplier.Factor() / 1e3
}
