// Package version provides profile schema version parsing and
// compatibility checks.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current is the profile schema version produced by this library.
const Current = "1.0"

// ErrIncompatible is returned when a schema version has a different
// major version than Current.
var ErrIncompatible = errors.New("incompatible schema version")

// SchemaVersion represents a parsed "major.minor" schema version.
type SchemaVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (SchemaVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return SchemaVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return SchemaVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return SchemaVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return SchemaVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v SchemaVersion) Compatible(other SchemaVersion) bool {
	return v.Major == other.Major
}

// CheckCompatible parses s and checks it against Current.
func CheckCompatible(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	current, _ := Parse(Current)
	if !current.Compatible(v) {
		return fmt.Errorf("%w: %s (supported: %d.x)", ErrIncompatible, v, current.Major)
	}
	return nil
}
