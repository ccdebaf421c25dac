// Package timestamp turns the substring captured from a log line into an instant.
//
// Parse is deliberately forgiving: clock-only values such as "9:12:01" are
// accepted (anchored to the zero date so they stay comparable with each other),
// long digit runs are read as Unix epochs, and everything else is handed to
// dateparse, which understands most formats seen in the wild.
package timestamp

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// clockLayouts are tried before dateparse because it rejects bare times of day.
var clockLayouts = []string{
	"15:04:05",
	"3:04:05 PM",
	"3:04:05PM",
}

// Parse returns the instant described by s. The zero instant, a zero epoch and
// anything unparseable all report false.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if isEpoch(s) {
		return parseEpoch(s)
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// isEpoch reports whether s looks like a Unix timestamp: digits with an
// optional fraction, and either a fraction or at least nine integer digits.
// Shorter digit runs such as "20240101" are left to dateparse.
func isEpoch(s string) bool {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) {
		return false
	}
	if hasFrac {
		return frac != "" && allDigits(frac)
	}
	return len(intPart) >= 9 || strings.Trim(intPart, "0") == ""
}

func parseEpoch(s string) (time.Time, bool) {
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	var nanos int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		nanos, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
	}
	if n == 0 && nanos == 0 {
		return time.Time{}, false
	}

	var t time.Time
	switch digits := len(strings.TrimLeft(intPart, "0")); {
	case digits <= 10:
		t = time.Unix(n, nanos)
	case digits <= 13:
		t = time.UnixMilli(n)
	case digits <= 16:
		t = time.UnixMicro(n)
	default:
		t = time.Unix(0, n)
	}
	return t.UTC(), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
