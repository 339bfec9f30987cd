// Package device provides the identity of a simulated battery system.
package device

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrMissingLogicalDevice is returned when an identity file omits the
// logical device ID. It cannot be generated.
var ErrMissingLogicalDevice = errors.New("logical device ID is required")

// Identity identifies a battery system. It is read-only input to the
// profile builders.
type Identity struct {
	// MRID is the stable master resource identifier.
	MRID string `yaml:"mrid"`

	// Name is the display name.
	Name string `yaml:"name"`

	// Description is free-form text.
	Description string `yaml:"description"`

	// LogicalDeviceID addresses the device on the bus.
	LogicalDeviceID string `yaml:"logicalDeviceId"`
}

// NewIdentity creates an identity with a freshly generated mRID.
func NewIdentity(name, description, logicalDeviceID string) Identity {
	return Identity{
		MRID:            uuid.NewString(),
		Name:            name,
		Description:     description,
		LogicalDeviceID: logicalDeviceID,
	}
}

// ParseIdentity parses an identity from YAML bytes.
// A missing mRID is generated; a missing logical device ID is an error.
func ParseIdentity(data []byte) (Identity, error) {
	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parsing identity: %w", err)
	}
	if err := id.Normalize(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// LoadIdentity loads and parses an identity from a file.
func LoadIdentity(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Identity{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseIdentity(data)
}

// Normalize fills generated fields and checks required ones.
func (id *Identity) Normalize() error {
	if id.LogicalDeviceID == "" {
		return ErrMissingLogicalDevice
	}
	if id.MRID == "" {
		id.MRID = uuid.NewString()
	}
	return nil
}

// String returns "name (logicalDeviceID)".
func (id Identity) String() string {
	if id.Name == "" {
		return id.LogicalDeviceID
	}
	return fmt.Sprintf("%s (%s)", id.Name, id.LogicalDeviceID)
}
