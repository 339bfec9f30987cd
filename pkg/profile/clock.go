package profile

import "time"

// Clock supplies the current instant to the builders.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Compile-time interface satisfaction checks.
var (
	_ Clock = ClockFunc(nil)
	_ Clock = SystemClock{}
	_ Clock = FixedClock{}
)
