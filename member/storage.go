package member

import (
	"fmt"
	"slices"
	"strings"
)

// Class is the storage class the engine uses to create or validate a
// matching on-disk member type.
type Class uint8

const (
	// ClassInvalid is the zero Class.
	ClassInvalid Class = iota
	// ClassInteger is a little-endian integer of 1, 2, 4 or 8 bytes.
	ClassInteger
	// ClassFloat is an IEEE 754 float of 4 or 8 bytes.
	ClassFloat
	// ClassString is a zero-padded, length-prefixed or variable-length string.
	ClassString
	// ClassEnum is an integer ordinal into an enumeration.
	ClassEnum
	// ClassBitField is an array of 64-bit words holding a bit set.
	ClassBitField
	// ClassReference is an engine reference to another stored object.
	ClassReference
)

var classNames = [...]string{
	ClassInvalid:   "invalid",
	ClassInteger:   "integer",
	ClassFloat:     "float",
	ClassString:    "string",
	ClassEnum:      "enum",
	ClassBitField:  "bitfield",
	ClassReference: "reference",
}

// String returns the string representation of the Class.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(b []byte) error {
	for i, name := range classNames {
		if strings.EqualFold(name, string(b)) {
			*c = Class(i)
			return nil
		}
	}
	return fmt.Errorf("unknown storage class %q", b)
}

// StorageType describes how one member is stored: the element width,
// signedness and array extents. It is what the storage engine needs to
// create or validate a matching compound member type.
type StorageType struct {
	Class          Class     `json:"class"`
	Size           int       `json:"size"`
	Signed         bool      `json:"signed,omitempty"`
	Dims           []int     `json:"dims,omitempty"`
	VariableLength bool      `json:"variable_length,omitempty"`
	ExplicitLength bool      `json:"explicit_length,omitempty"`
	Enum           *EnumType `json:"enum,omitempty"`
	Variant        Variant   `json:"variant,omitempty"`
}

// Elements returns the number of elements described by Dims.
func (s StorageType) Elements() int {
	n := 1
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// ByteSize returns the total slot size of the member.
func (s StorageType) ByteSize() int {
	return s.Size * s.Elements()
}

// Equal reports whether s and o describe the same storage.
func (s StorageType) Equal(o StorageType) bool {
	if s.Class != o.Class || s.Size != o.Size || s.Signed != o.Signed ||
		s.VariableLength != o.VariableLength || s.ExplicitLength != o.ExplicitLength ||
		s.Variant != o.Variant || !slices.Equal(s.Dims, o.Dims) {
		return false
	}
	if (s.Enum == nil) != (o.Enum == nil) {
		return false
	}
	return s.Enum == nil || s.Enum.Equal(o.Enum)
}

// String returns a compact description such as "int32[3]" or "string(8)".
func (s StorageType) String() string {
	var b strings.Builder
	switch s.Class {
	case ClassInteger:
		if s.Variant == VariantBool {
			b.WriteString("bool")
			break
		}
		if !s.Signed {
			b.WriteByte('u')
		}
		fmt.Fprintf(&b, "int%d", s.Size*8)
	case ClassFloat:
		fmt.Fprintf(&b, "float%d", s.Size*8)
	case ClassString:
		if s.VariableLength {
			b.WriteString("string(*)")
		} else {
			fmt.Fprintf(&b, "string(%d)", s.Size)
		}
	case ClassEnum:
		if s.Enum != nil {
			fmt.Fprintf(&b, "enum<%s>", s.Enum.Name)
		} else {
			b.WriteString("enum")
		}
	default:
		b.WriteString(s.Class.String())
	}
	for _, d := range s.Dims {
		fmt.Fprintf(&b, "[%d]", d)
	}
	if s.Variant != VariantNone && s.Variant != VariantEnum && s.Variant != VariantBitField && s.Variant != VariantBool {
		fmt.Fprintf(&b, "@%s", s.Variant)
	}
	return b.String()
}
