package schema

import (
	"fmt"
	"time"
)

// Representable timestamp range. Years outside 1..9999 have no
// four-digit lexical form on the wire.
const (
	MinYear = 1
	MaxYear = 9999
)

// Timestamp is the protocol timestamp: UTC with millisecond resolution.
//
// CBOR encoding:
//
//	{
//	  1: seconds,  // int64: seconds since Unix epoch
//	  2: nanos     // uint32: sub-second part, whole milliseconds
//	}
type Timestamp struct {
	Seconds int64  `cbor:"1,keyasint"`
	Nanos   uint32 `cbor:"2,keyasint,omitempty"`
}

// TimeConversionError reports an instant that has no Timestamp form.
type TimeConversionError struct {
	Time time.Time
}

func (e *TimeConversionError) Error() string {
	return fmt.Sprintf("time %d-%02d-%02d is outside the representable range (years %d-%d)",
		e.Time.Year(), e.Time.Month(), e.Time.Day(), MinYear, MaxYear)
}

// TimestampFor converts t to a Timestamp, truncating to milliseconds.
func TimestampFor(t time.Time) (Timestamp, error) {
	u := t.UTC()
	if y := u.Year(); y < MinYear || y > MaxYear {
		return Timestamp{}, &TimeConversionError{Time: t}
	}
	ms := u.Nanosecond() / int(time.Millisecond)
	return Timestamp{
		Seconds: u.Unix(),
		Nanos:   uint32(ms) * uint32(time.Millisecond),
	}, nil
}

// Time returns the instant as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// IsZero returns true for the zero Timestamp.
func (ts Timestamp) IsZero() bool {
	return ts.Seconds == 0 && ts.Nanos == 0
}

// String renders the timestamp as RFC 3339 with milliseconds.
func (ts Timestamp) String() string {
	return ts.Time().Format("2006-01-02T15:04:05.000Z07:00")
}
