package types

import "strings"

// Unit is the unit of a MetricDatum value.
type Unit string

const (
	UnitSeconds         Unit = "Seconds"
	UnitMicroseconds    Unit = "Microseconds"
	UnitMilliseconds    Unit = "Milliseconds"
	UnitBytes           Unit = "Bytes"
	UnitKilobytes       Unit = "Kilobytes"
	UnitMegabytes       Unit = "Megabytes"
	UnitGigabytes       Unit = "Gigabytes"
	UnitTerabytes       Unit = "Terabytes"
	UnitBits            Unit = "Bits"
	UnitKilobits        Unit = "Kilobits"
	UnitMegabits        Unit = "Megabits"
	UnitGigabits        Unit = "Gigabits"
	UnitTerabits        Unit = "Terabits"
	UnitPercent         Unit = "Percent"
	UnitCount           Unit = "Count"
	UnitBytesSecond     Unit = "Bytes/Second"
	UnitKilobytesSecond Unit = "Kilobytes/Second"
	UnitMegabytesSecond Unit = "Megabytes/Second"
	UnitGigabytesSecond Unit = "Gigabytes/Second"
	UnitTerabytesSecond Unit = "Terabytes/Second"
	UnitBitsSecond      Unit = "Bits/Second"
	UnitKilobitsSecond  Unit = "Kilobits/Second"
	UnitMegabitsSecond  Unit = "Megabits/Second"
	UnitGigabitsSecond  Unit = "Gigabits/Second"
	UnitTerabitsSecond  Unit = "Terabits/Second"
	UnitCountSecond     Unit = "Count/Second"
	UnitNone            Unit = "None"
)

var units = []Unit{
	UnitSeconds, UnitMicroseconds, UnitMilliseconds,
	UnitBytes, UnitKilobytes, UnitMegabytes, UnitGigabytes, UnitTerabytes,
	UnitBits, UnitKilobits, UnitMegabits, UnitGigabits, UnitTerabits,
	UnitPercent, UnitCount,
	UnitBytesSecond, UnitKilobytesSecond, UnitMegabytesSecond, UnitGigabytesSecond, UnitTerabytesSecond,
	UnitBitsSecond, UnitKilobitsSecond, UnitMegabitsSecond, UnitGigabitsSecond, UnitTerabitsSecond,
	UnitCountSecond, UnitNone,
}

// ValidUnit reports whether u is one of the standard unit names.
// An empty unit is valid and is sent as UnitNone.
func ValidUnit(u Unit) bool {
	if u == "" {
		return true
	}
	for _, known := range units {
		if u == known {
			return true
		}
	}
	return false
}

// ParseUnit matches s against the standard unit names, ignoring case.
func ParseUnit(s string) (Unit, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnitNone, true
	}
	for _, known := range units {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}
