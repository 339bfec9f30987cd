package schema

import (
	"errors"
	"testing"
	"time"
)

func TestTimestampForTruncatesToMillis(t *testing.T) {
	in := time.Date(2024, 3, 15, 10, 30, 0, 123456789, time.UTC)

	ts, err := TimestampFor(in)
	if err != nil {
		t.Fatalf("TimestampFor failed: %v", err)
	}
	if ts.Seconds != in.Unix() {
		t.Errorf("Seconds: got %d, want %d", ts.Seconds, in.Unix())
	}
	if ts.Nanos != 123000000 {
		t.Errorf("Nanos: got %d, want %d", ts.Nanos, 123000000)
	}
	if got := ts.String(); got != "2024-03-15T10:30:00.123Z" {
		t.Errorf("String: got %q", got)
	}
}

func TestTimestampForConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2024, 1, 1, 1, 0, 0, 0, loc)

	ts, err := TimestampFor(in)
	if err != nil {
		t.Fatalf("TimestampFor failed: %v", err)
	}
	if !ts.Time().Equal(in) {
		t.Errorf("Time: got %v, want %v", ts.Time(), in)
	}
	if ts.Time().Location() != time.UTC {
		t.Errorf("Time location: got %v, want UTC", ts.Time().Location())
	}
}

func TestTimestampForOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
	}{
		{"zero time", time.Time{}.Add(-time.Hour)},
		{"year 0", time.Date(0, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"year 10000", time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TimestampFor(tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			var convErr *TimeConversionError
			if !errors.As(err, &convErr) {
				t.Fatalf("expected *TimeConversionError, got %T", err)
			}
			if !convErr.Time.Equal(tt.in) {
				t.Errorf("Time: got %v, want %v", convErr.Time, tt.in)
			}
		})
	}
}

func TestTimestampForRangeBoundaries(t *testing.T) {
	for _, in := range []time.Time{
		time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 999000000, time.UTC),
	} {
		if _, err := TimestampFor(in); err != nil {
			t.Errorf("TimestampFor(%v) failed: %v", in, err)
		}
	}
}

func TestProfileKindString(t *testing.T) {
	tests := []struct {
		kind ProfileKind
		want string
	}{
		{KindReading, "READING"},
		{KindEvent, "EVENT"},
		{KindControl, "CONTROL"},
		{KindUnknown, "UNKNOWN"},
		{ProfileKind(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ProfileKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
		if parsed, ok := ParseProfileKind(tt.want); ok && parsed != tt.kind {
			t.Errorf("ParseProfileKind(%q) = %v, want %v", tt.want, parsed, tt.kind)
		}
	}
}

func TestParseProfileKindIgnoresCase(t *testing.T) {
	for _, in := range []string{"reading", "READING", "Reading", "rEaDiNg"} {
		kind, ok := ParseProfileKind(in)
		if !ok || kind != KindReading {
			t.Errorf("ParseProfileKind(%q) = %v, %t, want READING", in, kind, ok)
		}
	}
	if kind, ok := ParseProfileKind("Control"); !ok || kind != KindControl {
		t.Errorf("ParseProfileKind(%q) = %v, %t, want CONTROL", "Control", kind, ok)
	}
	if _, ok := ParseProfileKind("status"); ok {
		t.Error("ParseProfileKind accepted an unknown kind")
	}
}

func TestUnitStrings(t *testing.T) {
	if UnitW.String() != "W" {
		t.Errorf("UnitW: got %q", UnitW.String())
	}
	if UnitNone.String() != "none" {
		t.Errorf("UnitNone: got %q", UnitNone.String())
	}
	if MultiplierKilo.String() != "kilo" {
		t.Errorf("MultiplierKilo: got %q", MultiplierKilo.String())
	}
	if MultiplierKilo.Factor() != 1000 {
		t.Errorf("MultiplierKilo.Factor: got %v", MultiplierKilo.Factor())
	}
	if MultiplierNone.Factor() != 1 {
		t.Errorf("MultiplierNone.Factor: got %v", MultiplierNone.Factor())
	}
}

func TestGoodQualityIsFresh(t *testing.T) {
	a := GoodQuality()
	a[0] = 1
	b := GoodQuality()
	if b[0] != 0 || b[1] != 0 || len(b) != 2 {
		t.Errorf("GoodQuality shares state: got %v", b)
	}
}
