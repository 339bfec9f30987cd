package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/openfmb-sim/battery-sim-go/pkg/log"
)

// exportRecord is the JSON form of an event.
type exportRecord struct {
	Timestamp       string `json:"timestamp"`
	SessionID       string `json:"sessionId"`
	Direction       string `json:"direction"`
	Kind            string `json:"kind"`
	LogicalDeviceID string `json:"logicalDeviceId,omitempty"`
	MessageID       string `json:"messageId,omitempty"`
	Size            int    `json:"size,omitempty"`
	ErrorStage      string `json:"errorStage,omitempty"`
	Error           string `json:"error,omitempty"`
}

func newExportRecord(e log.Event) exportRecord {
	r := exportRecord{
		Timestamp:       e.Timestamp.UTC().Format(timeFormat),
		SessionID:       e.SessionID,
		Direction:       e.Direction.String(),
		Kind:            e.Kind.String(),
		LogicalDeviceID: e.LogicalDeviceID,
		MessageID:       e.MessageID,
		Size:            e.Size,
	}
	if e.Error != nil {
		r.ErrorStage = e.Error.Stage.String()
		r.Error = e.Error.Message
	}
	return r
}

// RunExport writes the matching events of a log file to w as jsonl or csv.
func RunExport(path, format string, filter log.Filter, w io.Writer) error {
	var write func(exportRecord) error
	var flush func() error

	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		write = func(r exportRecord) error { return enc.Encode(r) }
		flush = func() error { return nil }
	case "csv":
		cw := csv.NewWriter(w)
		header := []string{"timestamp", "session_id", "direction", "kind", "device", "message_id", "size", "error_stage", "error"}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		write = func(r exportRecord) error {
			return cw.Write([]string{
				r.Timestamp, r.SessionID, r.Direction, r.Kind, r.LogicalDeviceID,
				r.MessageID, strconv.Itoa(r.Size), r.ErrorStage, r.Error,
			})
		}
		flush = func() error {
			cw.Flush()
			return cw.Error()
		}
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := write(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
	return flush()
}
