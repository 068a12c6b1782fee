package infer

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339, time.RFC3339Nano, "2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"02 Jan 2006", "Jan 2 2006", "January 2 2006",
}

// ParseNumeric parses s with ',' treated as the decimal separator's equal.
// Only finite values parse; "NaN" and "Inf" spellings are rejected.
func ParseNumeric(s string) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseDate tries the supported layouts in order.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Convert turns trimmed cell text into the value for kind k. Failed numeric
// parses yield 0 and failed dates the zero time; neither is an error.
func Convert(s string, k Kind) any {
	s = strings.TrimSpace(s)
	switch k {
	case Numeric:
		f, _ := ParseNumeric(s)
		return f
	case Date:
		t, _ := ParseDate(s)
		return t
	default:
		return s
	}
}
