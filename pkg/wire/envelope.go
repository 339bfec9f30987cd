package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
	"github.com/openfmb-sim/battery-sim-go/pkg/version"
)

// Codec errors.
var (
	ErrUnknownKind         = errors.New("unknown profile kind")
	ErrIncompatibleVersion = version.ErrIncompatible
)

// Envelope wraps an encoded profile.
type Envelope struct {
	Version   string             `cbor:"1,keyasint"`
	Kind      schema.ProfileKind `cbor:"2,keyasint"`
	MessageID string             `cbor:"3,keyasint"`
	Payload   cbor.RawMessage    `cbor:"4,keyasint"`
}

// EncodeProfile encodes a profile in an envelope with a new message ID.
func EncodeProfile(p schema.Profile) ([]byte, error) {
	return EncodeProfileWithID(p, uuid.NewString())
}

// EncodeProfileWithID encodes a profile in an envelope with the given
// message ID.
func EncodeProfileWithID(p schema.Profile, messageID string) ([]byte, error) {
	if p == nil || !p.Kind().IsValid() {
		return nil, ErrUnknownKind
	}

	payload, err := Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s profile: %w", p.Kind(), err)
	}

	return Marshal(&Envelope{
		Version:   version.Current,
		Kind:      p.Kind(),
		MessageID: messageID,
		Payload:   payload,
	})
}

// DecodeEnvelope decodes an envelope without decoding its payload.
// Envelopes with an incompatible schema version or unknown kind are
// rejected.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if err := version.CheckCompatible(env.Version); err != nil {
		return nil, err
	}
	if !env.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, env.Kind)
	}
	return &env, nil
}

// Profile decodes the envelope payload into its concrete profile type.
func (e *Envelope) Profile() (schema.Profile, error) {
	var p schema.Profile

	switch e.Kind {
	case schema.KindReading:
		rp := &schema.BatteryReadingProfile{}
		if err := Unmarshal(e.Payload, rp); err != nil {
			return nil, fmt.Errorf("failed to decode reading profile: %w", err)
		}
		if rp.Readings == nil {
			rp.Readings = []schema.Reading{}
		}
		p = rp

	case schema.KindEvent:
		ep := &schema.BatteryEventProfile{}
		if err := Unmarshal(e.Payload, ep); err != nil {
			return nil, fmt.Errorf("failed to decode event profile: %w", err)
		}
		p = ep

	case schema.KindControl:
		cp := &schema.BatteryControlProfile{}
		if err := Unmarshal(e.Payload, cp); err != nil {
			return nil, fmt.Errorf("failed to decode control profile: %w", err)
		}
		if cp.BatterySystemControl.SetPoints == nil {
			cp.BatterySystemControl.SetPoints = []schema.SetPoint{}
		}
		p = cp

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, e.Kind)
	}

	return p, nil
}

// DecodeProfile decodes an envelope and its profile.
func DecodeProfile(data []byte) (schema.Profile, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	return env.Profile()
}

// PeekKind returns the profile kind of an encoded envelope without
// decoding the payload or checking the version.
func PeekKind(data []byte) (schema.ProfileKind, error) {
	var peek struct {
		Kind schema.ProfileKind `cbor:"2,keyasint"`
	}
	if err := Unmarshal(data, &peek); err != nil {
		return schema.KindUnknown, fmt.Errorf("failed to peek envelope: %w", err)
	}
	return peek.Kind, nil
}
