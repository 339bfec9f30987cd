// Package simulator runs a simulated battery that publishes profiles.
//
// A Battery integrates its state of charge over time from a real power
// setpoint. A Publisher steps the battery on a ticker, builds reading and
// event profiles for it, encodes them and hands the bytes to a Sink.
// Control profiles received through HandleControl change the battery's
// setpoint, mode or islanding state.
package simulator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// Battery modes. Other codes are accepted and reported as "Mode<n>".
const (
	ModeStandby   = 0
	ModeCharge    = 1
	ModeDischarge = 2
	ModeIslanded  = 3
)

// ModeName returns the display name of a mode code.
func ModeName(mode int) string {
	switch mode {
	case ModeStandby:
		return "Standby"
	case ModeCharge:
		return "Charge"
	case ModeDischarge:
		return "Discharge"
	case ModeIslanded:
		return "Islanded"
	default:
		return fmt.Sprintf("Mode%d", mode)
	}
}

// Config holds the physical parameters of a simulated battery.
type Config struct {
	CapacityKWh      float64 `yaml:"capacityKWh"`
	MaxPowerKW       float64 `yaml:"maxPowerKW"`
	InitialSoC       float64 `yaml:"initialSoC"`
	NominalVoltage   float64 `yaml:"nominalVoltage"`
	NominalFrequency float64 `yaml:"nominalFrequency"`
}

// DefaultConfig returns a 10 kWh / 5 kW battery at half charge.
func DefaultConfig() Config {
	return Config{
		CapacityKWh:      10,
		MaxPowerKW:       5,
		InitialSoC:       0.5,
		NominalVoltage:   230,
		NominalFrequency: 50,
	}
}

// Validate checks the physical parameters.
func (c Config) Validate() error {
	if c.CapacityKWh <= 0 {
		return fmt.Errorf("capacity must be positive, got %v kWh", c.CapacityKWh)
	}
	if c.MaxPowerKW <= 0 {
		return fmt.Errorf("max power must be positive, got %v kW", c.MaxPowerKW)
	}
	if c.InitialSoC < 0 || c.InitialSoC > 1 {
		return fmt.Errorf("initial state of charge must be in [0, 1], got %v", c.InitialSoC)
	}
	return nil
}

// State is a snapshot of the battery.
type State struct {
	StateOfCharge float64
	PowerKW       float64
	Mode          int
	Islanded      bool
	Connected     bool
}

// IsCharging returns true when energy flows into the battery.
func (s State) IsCharging() bool {
	return s.PowerKW > 0
}

// Battery is a simulated battery. It is safe for concurrent use.
type Battery struct {
	mu        sync.Mutex
	cfg       Config
	soc       float64
	powerKW   float64
	mode      int
	islanded  bool
	connected bool
}

// NewBattery creates a connected battery in standby.
func NewBattery(cfg Config) *Battery {
	return &Battery{
		cfg:       cfg,
		soc:       cfg.InitialSoC,
		mode:      ModeStandby,
		connected: true,
	}
}

// Config returns the battery parameters.
func (b *Battery) Config() Config {
	return b.cfg
}

// State returns a snapshot of the battery.
func (b *Battery) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		StateOfCharge: b.soc,
		PowerKW:       b.powerKW,
		Mode:          b.mode,
		Islanded:      b.islanded,
		Connected:     b.connected,
	}
}

// Restore replaces the battery state, for resuming a saved run. The
// state of charge is clamped to [0, 1] and power to the rated power.
func (b *Battery) Restore(s State) {
	b.mu.Lock()
	b.soc = math.Max(0, math.Min(1, s.StateOfCharge))
	b.mode = s.Mode
	b.islanded = s.Islanded
	b.connected = s.Connected
	b.mu.Unlock()

	if s.Connected {
		b.SetPower(s.PowerKW)
	} else {
		b.SetPower(0)
	}
}

// SetPower sets the real power setpoint in kW, clamped to the rated
// power. Positive charges, negative discharges.
func (b *Battery) SetPower(kW float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if math.IsNaN(kW) {
		kW = 0
	}
	b.powerKW = math.Max(-b.cfg.MaxPowerKW, math.Min(b.cfg.MaxPowerKW, kW))
}

// SetMode sets the operating mode. Standby also zeroes the power setpoint.
func (b *Battery) SetMode(mode int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = mode
	if mode == ModeStandby {
		b.powerKW = 0
	}
}

// SetIslanded sets the islanding state.
func (b *Battery) SetIslanded(islanded bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.islanded = islanded
}

// SetConnected sets whether the battery is connected.
func (b *Battery) SetConnected(connected bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = connected
	if !connected {
		b.powerKW = 0
	}
}

// Step advances the simulation by dt. The state of charge stays in
// [0, 1]; power drops to zero when the battery is full while charging
// or empty while discharging.
func (b *Battery) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return
	}

	b.soc += b.powerKW * dt.Hours() / b.cfg.CapacityKWh
	switch {
	case b.soc >= 1:
		b.soc = 1
		if b.powerKW > 0 {
			b.powerKW = 0
		}
	case b.soc <= 0:
		b.soc = 0
		if b.powerKW < 0 {
			b.powerKW = 0
		}
	}
}

// Readings returns the telemetry readings for the current state.
func (b *Battery) Readings(ts schema.Timestamp) []schema.Reading {
	s := b.State()
	stamp := ts

	voltage := b.cfg.NominalVoltage
	frequency := b.cfg.NominalFrequency
	if !s.Connected {
		voltage, frequency = 0, 0
	}

	return []schema.Reading{
		{ReadingType: "RealPower", Value: float32(s.PowerKW), Unit: schema.UnitW, Multiplier: schema.MultiplierKilo, Timestamp: &stamp},
		{ReadingType: "StateOfCharge", Value: float32(s.StateOfCharge * 100), Unit: schema.UnitPercent, Timestamp: &stamp},
		{ReadingType: "StoredEnergy", Value: float32(s.StateOfCharge * b.cfg.CapacityKWh), Unit: schema.UnitWh, Multiplier: schema.MultiplierKilo, Timestamp: &stamp},
		{ReadingType: "Voltage", Value: float32(voltage), Unit: schema.UnitV, Timestamp: &stamp},
		{ReadingType: "Frequency", Value: float32(frequency), Unit: schema.UnitHz, Timestamp: &stamp},
	}
}
