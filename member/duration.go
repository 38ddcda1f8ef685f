package member

import (
	"fmt"
	"strings"
	"time"
)

// TimeUnit is the unit of a stored duration count.
type TimeUnit uint8

const (
	// Nanoseconds counts nanoseconds.
	Nanoseconds TimeUnit = iota + 1
	// Microseconds counts microseconds.
	Microseconds
	// Milliseconds counts milliseconds.
	Milliseconds
	// Seconds counts seconds.
	Seconds
	// Minutes counts minutes.
	Minutes
	// Hours counts hours.
	Hours
	// Days counts 24-hour days.
	Days
)

// DefaultTimeUnit is used for duration members without a duration variant.
const DefaultTimeUnit = Seconds

var unitLengths = [...]time.Duration{
	Nanoseconds:  time.Nanosecond,
	Microseconds: time.Microsecond,
	Milliseconds: time.Millisecond,
	Seconds:      time.Second,
	Minutes:      time.Minute,
	Hours:        time.Hour,
	Days:         24 * time.Hour,
}

var unitNames = [...]string{
	Nanoseconds:  "nanoseconds",
	Microseconds: "microseconds",
	Milliseconds: "milliseconds",
	Seconds:      "seconds",
	Minutes:      "minutes",
	Hours:        "hours",
	Days:         "days",
}

// Valid reports whether u is a known unit.
func (u TimeUnit) Valid() bool {
	return u >= Nanoseconds && u <= Days
}

// String returns the string representation of the TimeUnit.
func (u TimeUnit) String() string {
	if u.Valid() {
		return unitNames[u]
	}
	return "Unknown"
}

// Length returns the length of one unit.
func (u TimeUnit) Length() time.Duration {
	if !u.Valid() {
		return 0
	}
	return unitLengths[u]
}

// ParseTimeUnit parses the name returned by TimeUnit.String.
func ParseTimeUnit(s string) (TimeUnit, error) {
	for i, name := range unitNames {
		if i > 0 && strings.EqualFold(name, s) {
			return TimeUnit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown time unit %q", s)
}

// Convert converts value counted in unit from to a count in unit to. Every
// unit is an integral multiple of all smaller units, so the conversion to a
// smaller unit is exact and the conversion to a larger unit truncates toward
// zero.
func Convert(value int64, from, to TimeUnit) int64 {
	if from == to || !from.Valid() || !to.Valid() {
		return value
	}
	f, t := int64(from.Length()), int64(to.Length())
	if f > t {
		return value * (f / t)
	}
	return value / (t / f)
}

// Duration is a time span paired with the unit it is counted in.
type Duration struct {
	Value int64
	Unit  TimeUnit
}

// In returns d converted to unit u.
func (d Duration) In(u TimeUnit) Duration {
	return Duration{Value: Convert(d.Value, d.Unit, u), Unit: u}
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(Convert(d.Value, d.Unit, Nanoseconds))
}

// String returns a string such as "3600 seconds".
func (d Duration) String() string {
	return fmt.Sprintf("%d %s", d.Value, d.Unit)
}

// FromStd returns t counted in unit u.
func FromStd(t time.Duration, u TimeUnit) Duration {
	return Duration{Value: Convert(int64(t), Nanoseconds, u), Unit: u}
}
