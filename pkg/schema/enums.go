package schema

import "strings"

// UnitSymbolKind identifies the physical unit of a value.
type UnitSymbolKind uint8

const (
	// UnitNone marks a dimensionless value (mode codes, counters).
	UnitNone UnitSymbolKind = 0

	// UnitW is active power in watts.
	UnitW UnitSymbolKind = 1

	// UnitVAr is reactive power in volt-ampere reactive.
	UnitVAr UnitSymbolKind = 2

	// UnitWh is energy in watt-hours.
	UnitWh UnitSymbolKind = 3

	// UnitV is voltage in volts.
	UnitV UnitSymbolKind = 4

	// UnitA is current in amperes.
	UnitA UnitSymbolKind = 5

	// UnitHz is frequency in hertz.
	UnitHz UnitSymbolKind = 6

	// UnitPercent is a percentage.
	UnitPercent UnitSymbolKind = 7
)

// String returns the unit symbol.
func (u UnitSymbolKind) String() string {
	switch u {
	case UnitNone:
		return "none"
	case UnitW:
		return "W"
	case UnitVAr:
		return "VAr"
	case UnitWh:
		return "Wh"
	case UnitV:
		return "V"
	case UnitA:
		return "A"
	case UnitHz:
		return "Hz"
	case UnitPercent:
		return "%"
	default:
		return "unknown"
	}
}

// UnitMultiplierKind is the decimal multiplier applied to a unit.
type UnitMultiplierKind uint8

const (
	// MultiplierNone applies no scaling.
	MultiplierNone UnitMultiplierKind = 0

	// MultiplierMilli scales by 10^-3.
	MultiplierMilli UnitMultiplierKind = 1

	// MultiplierKilo scales by 10^3.
	MultiplierKilo UnitMultiplierKind = 2

	// MultiplierMega scales by 10^6.
	MultiplierMega UnitMultiplierKind = 3
)

// String returns the SI prefix name.
func (m UnitMultiplierKind) String() string {
	switch m {
	case MultiplierNone:
		return "none"
	case MultiplierMilli:
		return "milli"
	case MultiplierKilo:
		return "kilo"
	case MultiplierMega:
		return "mega"
	default:
		return "unknown"
	}
}

// Factor returns the scaling factor of the multiplier.
// Unknown multipliers scale by 1.
func (m UnitMultiplierKind) Factor() float64 {
	switch m {
	case MultiplierMilli:
		return 1e-3
	case MultiplierKilo:
		return 1e3
	case MultiplierMega:
		return 1e6
	default:
		return 1
	}
}

// ProfileKind distinguishes the three profile families.
type ProfileKind uint8

const (
	// KindUnknown is the zero value and never appears on the wire.
	KindUnknown ProfileKind = 0

	// KindReading is a BatteryReadingProfile.
	KindReading ProfileKind = 1

	// KindEvent is a BatteryEventProfile.
	KindEvent ProfileKind = 2

	// KindControl is a BatteryControlProfile.
	KindControl ProfileKind = 3
)

// String returns the profile kind name.
func (k ProfileKind) String() string {
	switch k {
	case KindReading:
		return "READING"
	case KindEvent:
		return "EVENT"
	case KindControl:
		return "CONTROL"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true for the three defined profile kinds.
func (k ProfileKind) IsValid() bool {
	return k >= KindReading && k <= KindControl
}

// ParseProfileKind parses a kind name as printed by String, ignoring case.
func ParseProfileKind(s string) (ProfileKind, bool) {
	switch strings.ToUpper(s) {
	case "READING":
		return KindReading, true
	case "EVENT":
		return KindEvent, true
	case "CONTROL":
		return KindControl, true
	default:
		return KindUnknown, false
	}
}

// Control types carried in SetPoint.ControlType.
const (
	ControlTypeSetRealPower = "SetRealPower"
	ControlTypeSetMode      = "SetMode"
)
