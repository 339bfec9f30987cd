// Package schema defines the battery profile schema types.
//
// Profiles are the messages a battery system publishes (readings and
// events) or receives (controls). Every profile carries the logical
// device ID, a protocol timestamp and the BatterySystem description:
//
//	BatteryReadingProfile   telemetry readings
//	BatteryEventProfile     connection/charging status
//	BatteryControlProfile   islanding and setpoints
//
// # CBOR Integer Keys
//
// All structs use integer keys on the wire, like the rest of the
// protocol. Key numbers are stable; new fields get new keys.
//
// # Timestamps
//
// Timestamps have millisecond resolution and are limited to years
// 1 through 9999. TimestampFor reports instants outside that range as a
// *TimeConversionError.
package schema
