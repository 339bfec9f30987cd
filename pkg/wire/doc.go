// Package wire defines the CBOR wire format for battery profiles.
//
// Profiles use CBOR (RFC 8949) with integer keys for efficient encoding.
// Each profile travels inside an Envelope that names the schema version,
// the profile kind and a message ID:
//
//	{
//	  1: version,    // string: "major.minor"
//	  2: kind,       // uint8: 1=Reading, 2=Event, 3=Control
//	  3: messageId,  // string: UUID
//	  4: payload     // embedded CBOR profile
//	}
//
// # Determinism
//
// Encoding is canonical: decoding a profile and encoding it again with
// the same message ID yields identical bytes. Empty reading and setpoint
// lists are encoded as empty arrays, never null.
package wire
