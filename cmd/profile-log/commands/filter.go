package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/openfmb-sim/battery-sim-go/pkg/log"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// FilterOptions holds the raw filter flags shared by the commands.
type FilterOptions struct {
	SessionID  string
	Device     string
	Kind       string
	Direction  string
	ErrorsOnly bool
	TimeStart  string
	TimeEnd    string
}

// BuildFilter converts flag values into a log.Filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{
		SessionID:       opts.SessionID,
		LogicalDeviceID: opts.Device,
		ErrorsOnly:      opts.ErrorsOnly,
	}

	if opts.Kind != "" {
		k, err := ParseKindFlag(opts.Kind)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Kind = &k
	}
	if opts.Direction != "" {
		d, err := ParseDirectionFlag(opts.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid start time: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid end time: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

// ParseKindFlag parses a profile kind (reading, event, control).
func ParseKindFlag(s string) (schema.ProfileKind, error) {
	k, ok := schema.ParseProfileKind(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("unknown kind: %s (valid: reading, event, control)", s)
	}
	return k, nil
}

// ParseDirectionFlag parses a direction (in, out).
func ParseDirectionFlag(s string) (log.Direction, error) {
	d, ok := log.ParseDirection(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("unknown direction: %s (valid: in, out)", s)
	}
	return d, nil
}
