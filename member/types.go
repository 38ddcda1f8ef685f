package member

import (
	"fmt"
	"strings"
)

// Type is the logical type of a compound member.
type Type uint8

const (
	// TypeInvalid is the zero Type.
	TypeInvalid Type = iota
	// TypeInt8 is a 1-byte integer.
	TypeInt8
	// TypeInt16 is a 2-byte integer.
	TypeInt16
	// TypeInt32 is a 4-byte integer.
	TypeInt32
	// TypeInt64 is an 8-byte integer.
	TypeInt64
	// TypeFloat32 is an IEEE-754 single precision float.
	TypeFloat32
	// TypeFloat64 is an IEEE-754 double precision float.
	TypeFloat64
	// TypeBool is a boolean stored in one byte.
	TypeBool
	// TypeString is a fixed-length or variable-length string.
	TypeString
	// TypeEnum is an enumeration stored as its ordinal.
	TypeEnum
	// TypeDuration is a time span stored as a 64-bit count of units.
	TypeDuration
	// TypeTime is a point in time stored as milliseconds since the epoch.
	TypeTime
	// TypeBitSet is a boolean set stored as 64-bit words.
	TypeBitSet
	// TypeReference is an opaque handle to another record location.
	TypeReference
)

var typeNames = [...]string{
	TypeInvalid:   "invalid",
	TypeInt8:      "int8",
	TypeInt16:     "int16",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeBool:      "bool",
	TypeString:    "string",
	TypeEnum:      "enum",
	TypeDuration:  "duration",
	TypeTime:      "time",
	TypeBitSet:    "bitset",
	TypeReference: "reference",
}

// String returns the string representation of the Type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// ParseType parses the name returned by Type.String.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if i > 0 && strings.EqualFold(name, s) {
			return Type(i), nil
		}
	}
	return TypeInvalid, fmt.Errorf("unknown member type %q", s)
}

// IsInteger reports whether t is one of the fixed-width integer types.
func (t Type) IsInteger() bool {
	return t >= TypeInt8 && t <= TypeInt64
}

// IsFloat reports whether t is a floating point type.
func (t Type) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// NativeSize returns the natural storage width of t in bytes, or 0 when the
// width depends on the descriptor (strings, enums, bitsets).
func (t Type) NativeSize() int {
	switch t {
	case TypeInt8, TypeBool:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32, TypeFloat32:
		return 4
	case TypeInt64, TypeFloat64, TypeDuration, TypeTime, TypeReference:
		return 8
	default:
		return 0
	}
}

// IntegerType returns the integer Type with the given byte width.
func IntegerType(size int) (Type, bool) {
	switch size {
	case 1:
		return TypeInt8, true
	case 2:
		return TypeInt16, true
	case 4:
		return TypeInt32, true
	case 8:
		return TypeInt64, true
	default:
		return TypeInvalid, false
	}
}

// Variant is a semantic tag attached to a member or a whole record. It
// disambiguates meaning beyond the raw storage type.
type Variant uint8

const (
	// VariantNone means no semantic tag.
	VariantNone Variant = iota
	// VariantEnum marks an integer slot holding an enumeration ordinal.
	VariantEnum
	// VariantBitField marks a word array holding a boolean set.
	VariantBitField
	// VariantTimestampMillis is a timestamp in milliseconds since the epoch.
	VariantTimestampMillis
	// VariantDurationNanos is a duration in nanoseconds.
	VariantDurationNanos
	// VariantDurationMicros is a duration in microseconds.
	VariantDurationMicros
	// VariantDurationMillis is a duration in milliseconds.
	VariantDurationMillis
	// VariantDurationSeconds is a duration in seconds.
	VariantDurationSeconds
	// VariantDurationMinutes is a duration in minutes.
	VariantDurationMinutes
	// VariantDurationHours is a duration in hours.
	VariantDurationHours
	// VariantDurationDays is a duration in days.
	VariantDurationDays
	// VariantBool marks a one-byte integer slot holding a boolean.
	VariantBool
)

var variantNames = [...]string{
	VariantNone:            "none",
	VariantEnum:            "enum",
	VariantBitField:        "bitfield",
	VariantTimestampMillis: "timestamp",
	VariantDurationNanos:   "nanoseconds",
	VariantDurationMicros:  "microseconds",
	VariantDurationMillis:  "milliseconds",
	VariantDurationSeconds: "seconds",
	VariantDurationMinutes: "minutes",
	VariantDurationHours:   "hours",
	VariantDurationDays:    "days",
	VariantBool:            "bool",
}

// String returns the string representation of the Variant.
func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "Unknown"
}

// ParseVariant parses the name returned by Variant.String.
func ParseVariant(s string) (Variant, error) {
	if s == "" {
		return VariantNone, nil
	}
	for i, name := range variantNames {
		if strings.EqualFold(name, s) {
			return Variant(i), nil
		}
	}
	return VariantNone, fmt.Errorf("unknown type variant %q", s)
}

// IsDuration reports whether v is one of the duration variants.
func (v Variant) IsDuration() bool {
	return v >= VariantDurationNanos && v <= VariantDurationDays
}

// Unit returns the time unit of a duration variant. ok is false for
// non-duration variants.
func (v Variant) Unit() (unit TimeUnit, ok bool) {
	if !v.IsDuration() {
		return 0, false
	}
	return TimeUnit(v - VariantDurationNanos + 1), true
}

// DurationVariant returns the variant that tags durations in unit u.
func DurationVariant(u TimeUnit) Variant {
	if !u.Valid() {
		return VariantNone
	}
	return VariantDurationNanos + Variant(u-1)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(b []byte) error {
	p, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	p, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = p
	return nil
}
