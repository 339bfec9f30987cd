package log

import (
	"strings"
	"time"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// Event records one profile crossing the simulator boundary.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the simulator run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates whether the profile was published or received.
	Direction Direction `cbor:"3,keyasint"`

	// Kind is the profile family.
	Kind schema.ProfileKind `cbor:"4,keyasint"`

	// MessageID is the envelope message ID (empty if encoding failed).
	MessageID string `cbor:"5,keyasint,omitempty"`

	// LogicalDeviceID is the device the profile belongs to.
	LogicalDeviceID string `cbor:"6,keyasint,omitempty"`

	// Size is the encoded envelope size in bytes.
	Size int `cbor:"7,keyasint,omitempty"`

	// Payload is the encoded envelope (may be truncated).
	Payload []byte `cbor:"8,keyasint,omitempty"`

	// Truncated indicates if Payload was truncated.
	Truncated bool `cbor:"9,keyasint,omitempty"`

	// Error is set when building, encoding or applying the profile failed.
	Error *ErrorEventData `cbor:"10,keyasint,omitempty"`
}

// MaxPayloadSize is the largest payload stored in an Event.
const MaxPayloadSize = 4096

// SetPayload stores data, truncating it to MaxPayloadSize.
func (e *Event) SetPayload(data []byte) {
	e.Size = len(data)
	if len(data) > MaxPayloadSize {
		e.Payload = append([]byte(nil), data[:MaxPayloadSize]...)
		e.Truncated = true
		return
	}
	e.Payload = append([]byte(nil), data...)
	e.Truncated = false
}

// Direction indicates the direction of profile flow.
type Direction uint8

const (
	// DirectionIn indicates a received profile (controls).
	DirectionIn Direction = 0
	// DirectionOut indicates a published profile.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection parses "in" or "out", ignoring case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case "IN":
		return DirectionIn, true
	case "OUT":
		return DirectionOut, true
	default:
		return 0, false
	}
}

// Stage identifies where an error occurred.
type Stage uint8

const (
	// StageBuild is profile construction (timestamp conversion).
	StageBuild Stage = 0
	// StageEncode is CBOR encoding of an outgoing profile.
	StageEncode Stage = 1
	// StageApply is applying a received control.
	StageApply Stage = 2
	// StagePublish is handing bytes to the sink.
	StagePublish Stage = 3
	// StageDecode is decoding a received envelope.
	StageDecode Stage = 4
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageBuild:
		return "BUILD"
	case StageEncode:
		return "ENCODE"
	case StageApply:
		return "APPLY"
	case StagePublish:
		return "PUBLISH"
	case StageDecode:
		return "DECODE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures a failure.
type ErrorEventData struct {
	// Stage where the error occurred.
	Stage Stage `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
