// Package commands implements the profile-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/openfmb-sim/battery-sim-go/pkg/log"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
	"github.com/openfmb-sim/battery-sim-go/pkg/wire"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// RunView prints the events of a log file that match filter.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION KIND device
	ts := event.Timestamp.UTC().Format(timeFormat)
	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s\n",
		ts, shortID(event.SessionID), event.Direction, event.Kind, event.LogicalDeviceID)

	if event.MessageID != "" {
		fmt.Fprintf(w, "  MessageID: %s\n", event.MessageID)
	}
	if event.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", event.Size)
	}
	if event.Error != nil {
		fmt.Fprintf(w, "  Error [%s]: %s\n", event.Error.Stage, event.Error.Message)
	}

	switch {
	case len(event.Payload) == 0:
	case event.Truncated:
		fmt.Fprintf(w, "  Data: %s (truncated)\n", hex.EncodeToString(event.Payload))
	default:
		p, err := wire.DecodeProfile(event.Payload)
		if err != nil {
			fmt.Fprintf(w, "  Data: %s\n", hex.EncodeToString(event.Payload))
			fmt.Fprintf(w, "  Decode: %v\n", err)
			break
		}
		formatProfile(w, p)
	}

	fmt.Fprintln(w)
}

// formatProfile writes the body of a decoded profile.
func formatProfile(w io.Writer, p schema.Profile) {
	switch p := p.(type) {
	case *schema.BatteryReadingProfile:
		for _, r := range p.Readings {
			fmt.Fprintf(w, "  %s: %s\n", r.ReadingType, formatValue(r.Value, r.Multiplier, r.Unit))
		}
	case *schema.BatteryEventProfile:
		s := p.BatteryStatus
		fmt.Fprintf(w, "  Status: connected=%t charging=%t mode=%s soc=%.1f%%\n",
			s.IsConnected, s.IsCharging, s.Mode, s.StateOfCharge*100)
	case *schema.BatteryControlProfile:
		if p.BatterySystemControl.IsIslanded {
			fmt.Fprintln(w, "  Islanded")
		}
		for _, sp := range p.BatterySystemControl.SetPoints {
			fmt.Fprintf(w, "  %s: %s\n", sp.ControlType, formatValue(sp.Value, sp.Multiplier, sp.Unit))
		}
	}
}

// formatValue renders a value with its SI prefix and unit, e.g. "2.5 kW".
func formatValue(v float32, m schema.UnitMultiplierKind, u schema.UnitSymbolKind) string {
	var prefix string
	switch m {
	case schema.MultiplierMilli:
		prefix = "m"
	case schema.MultiplierKilo:
		prefix = "k"
	case schema.MultiplierMega:
		prefix = "M"
	}
	if u == schema.UnitNone {
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%g %s%s", v, prefix, u)
}

// shortID returns the first 8 characters of an ID.
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
