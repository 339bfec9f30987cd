package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// mockLogger records events for testing
type mockLogger struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func testEvent(kind schema.ProfileKind, dir Direction, device string) Event {
	e := Event{
		Timestamp:       time.Date(2024, 6, 1, 12, 0, 0, 123456789, time.UTC),
		SessionID:       "session-1",
		Direction:       dir,
		Kind:            kind,
		MessageID:       "msg-1",
		LogicalDeviceID: device,
	}
	e.SetPayload([]byte{0xa1, 0x01, 0x02})
	return e
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
	logger.Log(Event{Error: &ErrorEventData{Message: "x"}})
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	m := &mockLogger{}
	if OrNoop(m) != Logger(m) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
}

func TestSetPayloadTruncates(t *testing.T) {
	var e Event
	e.SetPayload(make([]byte, MaxPayloadSize+10))
	if e.Size != MaxPayloadSize+10 {
		t.Errorf("Size: got %d, want %d", e.Size, MaxPayloadSize+10)
	}
	if len(e.Payload) != MaxPayloadSize || !e.Truncated {
		t.Errorf("expected truncated payload of %d bytes, got %d (truncated=%v)", MaxPayloadSize, len(e.Payload), e.Truncated)
	}

	src := []byte{1, 2, 3}
	e.SetPayload(src)
	src[0] = 9
	if e.Payload[0] != 1 || e.Truncated {
		t.Errorf("SetPayload should copy small payloads: got %v (truncated=%v)", e.Payload, e.Truncated)
	}
}

func TestEventCBORRoundTrip(t *testing.T) {
	event := testEvent(schema.KindEvent, DirectionOut, "LD1")
	event.Error = &ErrorEventData{Stage: StagePublish, Message: "sink closed"}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
	if decoded.Kind != schema.KindEvent || decoded.Direction != DirectionOut {
		t.Errorf("Kind/Direction: got %v/%v", decoded.Kind, decoded.Direction)
	}
	if decoded.LogicalDeviceID != "LD1" || decoded.MessageID != "msg-1" {
		t.Errorf("ids: got %q/%q", decoded.LogicalDeviceID, decoded.MessageID)
	}
	if !bytes.Equal(decoded.Payload, event.Payload) {
		t.Errorf("Payload: got %x, want %x", decoded.Payload, event.Payload)
	}
	if decoded.Error == nil || decoded.Error.Stage != StagePublish || decoded.Error.Message != "sink closed" {
		t.Errorf("Error: got %+v", decoded.Error)
	}
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}

	multi := NewMultiLogger(mock1, nil, mock2)
	multi.Log(testEvent(schema.KindReading, DirectionOut, "LD1"))

	for i, mock := range []*mockLogger{mock1, mock2} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
		}
	}
}

func TestSlogAdapterLogsEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(testEvent(schema.KindControl, DirectionIn, "LD1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v, want DEBUG", entry["level"])
	}
	if entry["kind"] != "CONTROL" {
		t.Errorf("kind: got %v, want CONTROL", entry["kind"])
	}
	if entry["direction"] != "IN" {
		t.Errorf("direction: got %v, want IN", entry["direction"])
	}
	if entry["device"] != "LD1" {
		t.Errorf("device: got %v, want LD1", entry["device"])
	}
	if entry["size"] != float64(3) {
		t.Errorf("size: got %v, want 3", entry["size"])
	}
}

func TestSlogAdapterErrorsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	adapter := NewSlogAdapter(slog.New(handler))

	// Debug events are filtered by the Info handler.
	adapter.Log(testEvent(schema.KindReading, DirectionOut, "LD1"))
	if buf.Len() != 0 {
		t.Fatalf("expected debug event to be filtered, got %s", buf.String())
	}

	event := testEvent(schema.KindReading, DirectionOut, "LD1")
	event.Error = &ErrorEventData{Stage: StageBuild, Message: "bad clock"}
	adapter.Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["error_stage"] != "BUILD" {
		t.Errorf("error_stage: got %v, want BUILD", entry["error_stage"])
	}
}

func TestSlogAdapterWithLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	adapter := NewSlogAdapter(slog.New(handler)).WithLevel(slog.LevelInfo)

	adapter.Log(testEvent(schema.KindReading, DirectionOut, "LD1"))
	if buf.Len() == 0 {
		t.Error("expected info-level event to be written")
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.plog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(testEvent(schema.KindReading, DirectionOut, "LD1"))
	logger.Log(testEvent(schema.KindEvent, DirectionOut, "LD1"))
	logger.Log(testEvent(schema.KindControl, DirectionIn, "LD2"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Logging after close is ignored, second close is a no-op.
	logger.Log(testEvent(schema.KindReading, DirectionOut, "LD1"))
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if logger.Dropped() != 0 {
		t.Errorf("Dropped: got %d, want 0", logger.Dropped())
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	var kinds []schema.ProfileKind
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		kinds = append(kinds, e.Kind)
	}

	want := []schema.ProfileKind{schema.KindReading, schema.KindEvent, schema.KindControl}
	if len(kinds) != len(want) {
		t.Fatalf("got %d events, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.plog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(testEvent(schema.KindReading, DirectionOut, "LD1"))
		logger.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	r := NewStreamReader(bytes.NewReader(data), Filter{})
	count := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("got %d events, want 2", count)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.plog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Log(testEvent(schema.KindReading, DirectionOut, "LD1"))
		}()
	}
	wg.Wait()
	logger.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()
	count := 0
	for {
		if _, err := r.Next(); err != nil {
			if err != io.EOF {
				t.Fatalf("Next failed: %v", err)
			}
			break
		}
		count++
	}
	if count != 20 {
		t.Errorf("got %d events, want 20", count)
	}
}

func TestFilterMatches(t *testing.T) {
	control := schema.KindControl
	in := DirectionIn
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	event := testEvent(schema.KindControl, DirectionIn, "LD1")

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"device match", Filter{LogicalDeviceID: "LD1"}, true},
		{"device mismatch", Filter{LogicalDeviceID: "LD2"}, false},
		{"kind match", Filter{Kind: &control}, true},
		{"direction match", Filter{Direction: &in}, true},
		{"session mismatch", Filter{SessionID: "other"}, false},
		{"errors only", Filter{ErrorsOnly: true}, false},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, true},
		{"before window", Filter{TimeStart: &end}, false},
		{"end exclusive", Filter{TimeEnd: &start}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilteredReader(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, e := range []Event{
		testEvent(schema.KindReading, DirectionOut, "LD1"),
		testEvent(schema.KindControl, DirectionIn, "LD1"),
		testEvent(schema.KindReading, DirectionOut, "LD2"),
	} {
		if err := enc.Encode(e); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	reading := schema.KindReading
	r := NewStreamReader(&buf, Filter{Kind: &reading})
	defer r.Close()

	var devices []string
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		devices = append(devices, e.LogicalDeviceID)
	}
	if len(devices) != 2 || devices[0] != "LD1" || devices[1] != "LD2" {
		t.Errorf("got devices %v, want [LD1 LD2]", devices)
	}
}

func TestParseDirectionIgnoresCase(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"in", DirectionIn},
		{"IN", DirectionIn},
		{"In", DirectionIn},
		{"out", DirectionOut},
		{"Out", DirectionOut},
		{"oUT", DirectionOut},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if !ok || got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, %t, want %v", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := ParseDirection("sideways"); ok {
		t.Error("ParseDirection accepted an unknown direction")
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageBuild, "BUILD"},
		{StageEncode, "ENCODE"},
		{StageApply, "APPLY"},
		{StagePublish, "PUBLISH"},
		{StageDecode, "DECODE"},
		{Stage(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}
