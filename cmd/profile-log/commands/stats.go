package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/openfmb-sim/battery-sim-go/pkg/log"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByKind      map[schema.ProfileKind]int
	EventsByDirection map[log.Direction]int
	ErrorsByStage     map[log.Stage]int
	Devices           map[string]*DeviceStats
	Sessions          map[string]struct{}
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// DeviceStats holds statistics for a single logical device.
type DeviceStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Bytes     int
}

// RunStats analyzes the events of a log file that match filter and
// prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats, err := collectStats(reader)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(reader *log.Reader) (*Stats, error) {
	stats := &Stats{
		EventsByKind:      make(map[schema.ProfileKind]int),
		EventsByDirection: make(map[log.Direction]int),
		ErrorsByStage:     make(map[log.Stage]int),
		Devices:           make(map[string]*DeviceStats),
		Sessions:          make(map[string]struct{}),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++
		stats.EventsByDirection[event.Direction]++
		if event.SessionID != "" {
			stats.Sessions[event.SessionID] = struct{}{}
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		dev, ok := stats.Devices[event.LogicalDeviceID]
		if !ok {
			dev = &DeviceStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			stats.Devices[event.LogicalDeviceID] = dev
		}
		dev.Events++
		dev.Bytes += event.Size
		if event.Timestamp.After(dev.LastSeen) {
			dev.LastSeen = event.Timestamp
		}

		if event.Error != nil {
			stats.Errors++
			stats.ErrorsByStage[event.Error.Stage]++
		}
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Publication Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:     %d\n", len(stats.Sessions))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for _, kind := range []schema.ProfileKind{schema.KindReading, schema.KindEvent, schema.KindControl, schema.KindUnknown} {
		if count := stats.EventsByKind[kind]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", kind.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Devices: %d\n", len(stats.Devices))
	ids := make([]string, 0, len(stats.Devices))
	for id := range stats.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := stats.Devices[id]
		name := id
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(w, "  [%s] %d events, %d bytes, duration %s\n",
			name, d.Events, d.Bytes, d.LastSeen.Sub(d.FirstSeen).Round(time.Millisecond))
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
		for _, stage := range []log.Stage{log.StageBuild, log.StageEncode, log.StageDecode, log.StageApply, log.StagePublish} {
			if count := stats.ErrorsByStage[stage]; count > 0 {
				fmt.Fprintf(w, "  %-12s %d\n", stage.String()+":", count)
			}
		}
	}
}
