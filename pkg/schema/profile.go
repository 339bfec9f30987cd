package schema

// Profile is implemented by the three profile types.
type Profile interface {
	// Kind returns the profile family.
	Kind() ProfileKind

	// LogicalDevice returns the logical device ID the profile belongs to.
	LogicalDevice() string

	// ProfileTime returns the profile-level timestamp.
	ProfileTime() Timestamp
}

// BatterySystem describes the battery system a profile refers to.
//
// CBOR encoding:
//
//	{
//	  1: mRID,         // string
//	  2: name,         // string
//	  3: description   // string
//	}
type BatterySystem struct {
	MRID        string `cbor:"1,keyasint"`
	Name        string `cbor:"2,keyasint,omitempty"`
	Description string `cbor:"3,keyasint,omitempty"`
}

// Reading is a single telemetry sample. Profiles carry readings as-is.
type Reading struct {
	ReadingType string             `cbor:"1,keyasint"`
	Value       float32            `cbor:"2,keyasint"`
	Unit        UnitSymbolKind     `cbor:"3,keyasint"`
	Multiplier  UnitMultiplierKind `cbor:"4,keyasint"`
	Phase       string             `cbor:"5,keyasint,omitempty"`
	Timestamp   *Timestamp         `cbor:"6,keyasint,omitempty"`
}

// GoodQuality returns the two-byte quality flag for a good value.
func GoodQuality() []byte {
	return []byte{0, 0}
}

// BatteryStatus is the status block of an event profile.
// Status data lives in the structured fields; Value is unused and
// always empty.
type BatteryStatus struct {
	IsConnected   bool      `cbor:"1,keyasint"`
	IsCharging    bool      `cbor:"2,keyasint"`
	Mode          string    `cbor:"3,keyasint"`
	StateOfCharge float32   `cbor:"4,keyasint"`
	Value         string    `cbor:"5,keyasint"`
	Timestamp     Timestamp `cbor:"6,keyasint"`
	QualityFlag   []byte    `cbor:"7,keyasint"`
}

// SetPoint is one control target.
type SetPoint struct {
	Unit        UnitSymbolKind     `cbor:"1,keyasint"`
	Multiplier  UnitMultiplierKind `cbor:"2,keyasint"`
	ControlType string             `cbor:"3,keyasint"`
	Value       float32            `cbor:"4,keyasint"`
}

// BatterySystemControl carries the islanding flag and setpoints.
type BatterySystemControl struct {
	IsIslanded bool       `cbor:"1,keyasint"`
	SetPoints  []SetPoint `cbor:"2,keyasint"`
}

// BatteryReadingProfile carries telemetry readings.
type BatteryReadingProfile struct {
	LogicalDeviceID string        `cbor:"1,keyasint"`
	Timestamp       Timestamp     `cbor:"2,keyasint"`
	BatterySystem   BatterySystem `cbor:"3,keyasint"`
	Readings        []Reading     `cbor:"4,keyasint"`
}

// BatteryEventProfile carries the battery status.
type BatteryEventProfile struct {
	LogicalDeviceID string        `cbor:"1,keyasint"`
	Timestamp       Timestamp     `cbor:"2,keyasint"`
	BatterySystem   BatterySystem `cbor:"3,keyasint"`
	BatteryStatus   BatteryStatus `cbor:"4,keyasint"`
}

// BatteryControlProfile carries a control request for the battery.
type BatteryControlProfile struct {
	LogicalDeviceID      string               `cbor:"1,keyasint"`
	Timestamp            Timestamp            `cbor:"2,keyasint"`
	BatterySystem        BatterySystem        `cbor:"3,keyasint"`
	BatterySystemControl BatterySystemControl `cbor:"4,keyasint"`
}

func (p *BatteryReadingProfile) Kind() ProfileKind { return KindReading }
func (p *BatteryReadingProfile) LogicalDevice() string { return p.LogicalDeviceID }
func (p *BatteryReadingProfile) ProfileTime() Timestamp { return p.Timestamp }

func (p *BatteryEventProfile) Kind() ProfileKind { return KindEvent }
func (p *BatteryEventProfile) LogicalDevice() string { return p.LogicalDeviceID }
func (p *BatteryEventProfile) ProfileTime() Timestamp { return p.Timestamp }

func (p *BatteryControlProfile) Kind() ProfileKind { return KindControl }
func (p *BatteryControlProfile) LogicalDevice() string { return p.LogicalDeviceID }
func (p *BatteryControlProfile) ProfileTime() Timestamp { return p.Timestamp }

// Compile-time interface satisfaction checks.
var (
	_ Profile = (*BatteryReadingProfile)(nil)
	_ Profile = (*BatteryEventProfile)(nil)
	_ Profile = (*BatteryControlProfile)(nil)
)
