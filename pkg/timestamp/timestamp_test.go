package timestamp

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"clock only", "9:12:01", time.Date(0, 1, 1, 9, 12, 1, 0, time.UTC), true},
		{"clock with fraction", "09:12:01.250", time.Date(0, 1, 1, 9, 12, 1, 250_000_000, time.UTC), true},
		{"iso8601", "2024-03-28T13:45:30Z", time.Date(2024, 3, 28, 13, 45, 30, 0, time.UTC), true},
		{"space separated", "2024-03-28 13:45:30", time.Date(2024, 3, 28, 13, 45, 30, 0, time.UTC), true},
		{"epoch seconds", "1711633530", time.Date(2024, 3, 28, 13, 45, 30, 0, time.UTC), true},
		{"epoch millis", "1711633530123", time.Date(2024, 3, 28, 13, 45, 30, 123_000_000, time.UTC), true},
		{"epoch with fraction", "1711633530.5", time.Date(2024, 3, 28, 13, 45, 30, 500_000_000, time.UTC), true},
		{"padded", "  2024-03-28 13:45:30 ", time.Date(2024, 3, 28, 13, 45, 30, 0, time.UTC), true},
		{"zero epoch", "0", time.Time{}, false},
		{"zero epoch with fraction", "0.000", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseClockValuesAreOrdered(t *testing.T) {
	a, okA := Parse("9:12:00")
	b, okB := Parse("9:12:01")
	c, okC := Parse("10:00:00")
	if !okA || !okB || !okC {
		t.Fatal("expected all clock values to parse")
	}
	if !a.Before(b) || !b.Before(c) {
		t.Errorf("expected 9:12:00 < 9:12:01 < 10:00:00, got %v %v %v", a, b, c)
	}
}
