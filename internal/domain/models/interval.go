package models

import (
	"strings"
	"unicode"
)

// Unit is the time unit of an interval label.
type Unit int

const (
	UnitUnknown Unit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
)

// intervalUnits is the one table of accepted unit spellings.
// Month spellings start with "m" but are not minutes.
var intervalUnits = map[string]Unit{
	"m": UnitMinute, "min": UnitMinute, "mins": UnitMinute, "minute": UnitMinute, "minutes": UnitMinute,
	"h": UnitHour, "hr": UnitHour, "hrs": UnitHour, "hour": UnitHour, "hours": UnitHour,
	"d": UnitDay, "day": UnitDay, "days": UnitDay,
	"w": UnitWeek, "wk": UnitWeek, "week": UnitWeek, "weeks": UnitWeek,
	"mo": UnitMonth, "mon": UnitMonth, "month": UnitMonth, "months": UnitMonth,
}

// IntervalUnit returns the lowercase unit suffix of an interval label like "5m", "60min" or "1wk".
func IntervalUnit(interval string) string {
	s := strings.TrimSpace(strings.ToLower(interval))
	return strings.TrimLeftFunc(s, unicode.IsDigit)
}

// UnitOf looks up a unit suffix as returned by IntervalUnit.
func UnitOf(unit string) Unit {
	return intervalUnits[unit]
}

// IntervalUnitOf returns the unit of an interval label.
func IntervalUnitOf(interval string) Unit {
	return UnitOf(IntervalUnit(interval))
}

// IsIntraday reports whether the interval unit is minutes or hours.
func IsIntraday(interval string) bool {
	u := IntervalUnitOf(interval)
	return u == UnitMinute || u == UnitHour
}
