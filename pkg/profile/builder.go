// Package profile builds battery profiles from a device identity and
// raw readings or state.
//
// Builders are stateless apart from the Clock they read. Each call reads
// the clock once, and that single timestamp is used for every timestamp
// in the returned profile. Inputs are not validated: state of charge,
// mode codes and setpoint values pass through unchanged.
//
//	b := profile.NewBuilder()
//	reading, err := b.ReadingProfile(id, readings)
//	ctrl, err := b.ControlPowerSetpoint(id, 7.5) // kW
//
// The only error a builder returns is *schema.TimeConversionError when
// the clock reads an instant that has no protocol timestamp.
package profile

import (
	"github.com/openfmb-sim/battery-sim-go/pkg/device"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// Builder constructs profiles. It is immutable and safe for concurrent use.
type Builder struct {
	clock Clock
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the time source. A nil clock is ignored.
func WithClock(c Clock) Option {
	return func(b *Builder) {
		if c != nil {
			b.clock = c
		}
	}
}

// NewBuilder creates a Builder reading the system clock unless
// WithClock is given.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{clock: SystemClock{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// now captures the call's timestamp.
func (b *Builder) now() (schema.Timestamp, error) {
	return schema.TimestampFor(b.clock.Now())
}

// DescribeSystem returns the system description embedded in every profile.
func DescribeSystem(id device.Identity) schema.BatterySystem {
	return schema.BatterySystem{
		MRID:        id.MRID,
		Name:        id.Name,
		Description: id.Description,
	}
}

// ReadingProfile builds a reading profile carrying readings in the
// given order. A nil slice yields an empty, non-nil reading list.
func (b *Builder) ReadingProfile(id device.Identity, readings []schema.Reading) (*schema.BatteryReadingProfile, error) {
	ts, err := b.now()
	if err != nil {
		return nil, err
	}

	out := make([]schema.Reading, len(readings))
	copy(out, readings)

	return &schema.BatteryReadingProfile{
		LogicalDeviceID: id.LogicalDeviceID,
		Timestamp:       ts,
		BatterySystem:   DescribeSystem(id),
		Readings:        out,
	}, nil
}

// EventProfile builds an event profile. stateOfCharge is a fraction in
// [0, 1] by convention; it is narrowed to float32 and not range-checked.
func (b *Builder) EventProfile(id device.Identity, isConnected, isCharging bool, mode string, stateOfCharge float64) (*schema.BatteryEventProfile, error) {
	ts, err := b.now()
	if err != nil {
		return nil, err
	}

	return &schema.BatteryEventProfile{
		LogicalDeviceID: id.LogicalDeviceID,
		Timestamp:       ts,
		BatterySystem:   DescribeSystem(id),
		BatteryStatus:   newStatus(ts, isConnected, isCharging, mode, stateOfCharge),
	}, nil
}

// ControlIslanded builds a control profile requesting island mode.
// It carries no setpoints.
func (b *Builder) ControlIslanded(id device.Identity) (*schema.BatteryControlProfile, error) {
	return b.control(id, newSystemControl(true))
}

// ControlPowerSetpoint builds a control profile with a real power
// setpoint in kW.
func (b *Builder) ControlPowerSetpoint(id device.Identity, power float64) (*schema.BatteryControlProfile, error) {
	return b.control(id, newSystemControl(false, RealPowerSetPoint(power)))
}

// ControlModeSetpoint builds a control profile with a mode setpoint.
// Any mode code is accepted.
func (b *Builder) ControlModeSetpoint(id device.Identity, mode int) (*schema.BatteryControlProfile, error) {
	return b.control(id, newSystemControl(false, ModeSetPoint(mode)))
}

func (b *Builder) control(id device.Identity, ctrl schema.BatterySystemControl) (*schema.BatteryControlProfile, error) {
	ts, err := b.now()
	if err != nil {
		return nil, err
	}

	return &schema.BatteryControlProfile{
		LogicalDeviceID:      id.LogicalDeviceID,
		Timestamp:            ts,
		BatterySystem:        DescribeSystem(id),
		BatterySystemControl: ctrl,
	}, nil
}

// RealPowerSetPoint returns a SetRealPower setpoint in kW.
// The value is narrowed to float32.
func RealPowerSetPoint(power float64) schema.SetPoint {
	return newSetPoint(schema.UnitW, schema.MultiplierKilo, schema.ControlTypeSetRealPower, float32(power))
}

// ModeSetPoint returns a dimensionless SetMode setpoint.
func ModeSetPoint(mode int) schema.SetPoint {
	return newSetPoint(schema.UnitNone, schema.MultiplierNone, schema.ControlTypeSetMode, float32(mode))
}

func newSetPoint(unit schema.UnitSymbolKind, mult schema.UnitMultiplierKind, controlType string, value float32) schema.SetPoint {
	return schema.SetPoint{
		Unit:        unit,
		Multiplier:  mult,
		ControlType: controlType,
		Value:       value,
	}
}

// newSystemControl always returns a non-nil setpoint slice.
func newSystemControl(islanded bool, setPoints ...schema.SetPoint) schema.BatterySystemControl {
	sp := make([]schema.SetPoint, len(setPoints))
	copy(sp, setPoints)
	return schema.BatterySystemControl{
		IsIslanded: islanded,
		SetPoints:  sp,
	}
}

func newStatus(ts schema.Timestamp, isConnected, isCharging bool, mode string, stateOfCharge float64) schema.BatteryStatus {
	return schema.BatteryStatus{
		IsConnected:   isConnected,
		IsCharging:    isCharging,
		Mode:          mode,
		StateOfCharge: float32(stateOfCharge),
		Value:         "",
		Timestamp:     ts,
		QualityFlag:   schema.GoodQuality(),
	}
}
