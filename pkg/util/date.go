package util

import (
	"strconv"
	"time"
)

// Point date layouts. Both sort lexicographically in chronological order.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// ParseTime accepts RFC3339, a calendar date or unix seconds, as sent in period1/period2.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// FormatPointDate renders t as a point date. Intraday points keep the time of day.
func FormatPointDate(t time.Time, intraday bool) string {
	if intraday {
		return t.Format(DateTimeLayout)
	}
	return t.Format(DateLayout)
}

// ParsePointDate parses a point date in either layout, as UTC.
func ParsePointDate(s string) (time.Time, bool) {
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
