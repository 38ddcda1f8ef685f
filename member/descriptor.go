package member

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Reference is an opaque handle to another record location. Its meaning is
// owned by the storage engine.
type Reference uint64

// String returns the handle in hexadecimal.
func (r Reference) String() string { return "ref:" + strconv.FormatUint(uint64(r), 16) }

// Packed is the Offset of a member placed directly after its predecessor.
const Packed = -1

// Descriptor describes one member of a compound record. It is immutable: it
// is created by a Builder and every accessor returns a copy.
type Descriptor struct {
	name        string
	fieldName   string
	typ         Type
	dims        []int
	length      int
	enum        *EnumType
	unsigned    bool
	varLen      bool
	ref         bool
	explicitLen bool
	variant     Variant
	storage     *StorageType
	offset      int
}

// Name returns the member name used in the compound schema.
func (d Descriptor) Name() string { return d.name }

// FieldName returns the name of the host field (or map key) the member is
// read from. It defaults to Name.
func (d Descriptor) FieldName() string {
	if d.fieldName == "" {
		return d.name
	}
	return d.fieldName
}

// Type returns the logical type.
func (d Descriptor) Type() Type { return d.typ }

// Dimensions returns a copy of the array extents; empty means scalar.
func (d Descriptor) Dimensions() []int { return slices.Clone(d.dims) }

// Rank returns the number of dimensions.
func (d Descriptor) Rank() int { return len(d.dims) }

// Elements returns the product of the dimensions (1 for scalars).
func (d Descriptor) Elements() int {
	n := 1
	for _, x := range d.dims {
		n *= x
	}
	return n
}

// Length returns the byte width of a fixed-length string element.
func (d Descriptor) Length() int { return d.length }

// Enum returns the enumeration schema of an enumeration member.
func (d Descriptor) Enum() *EnumType { return d.enum }

// Unsigned reports whether an integer member is unsigned.
func (d Descriptor) Unsigned() bool { return d.unsigned }

// VariableLength reports whether a string member is variable-length.
func (d Descriptor) VariableLength() bool { return d.varLen }

// IsReference reports whether the member holds a reference.
func (d Descriptor) IsReference() bool { return d.ref }

// ExplicitLength reports whether a fixed-length string member stores its
// logical length instead of relying on NUL termination.
func (d Descriptor) ExplicitLength() bool { return d.explicitLen }

// Variant returns the type variant.
func (d Descriptor) Variant() Variant { return d.variant }

// Storage returns the declared external storage type, if any.
func (d Descriptor) Storage() (StorageType, bool) {
	if d.storage == nil {
		return StorageType{}, false
	}
	s := *d.storage
	s.Dims = slices.Clone(s.Dims)
	return s, true
}

// Offset returns the declared byte offset, or Packed.
func (d Descriptor) Offset() int { return d.offset }

// ToBuilder returns a Builder initialized from d.
func (d Descriptor) ToBuilder() *Builder {
	b := &Builder{d: d}
	b.d.dims = slices.Clone(d.dims)
	return b
}

// String returns a compact description of d.
func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.name)
	b.WriteByte(':')
	if d.unsigned {
		b.WriteByte('u')
	}
	b.WriteString(d.typ.String())
	if d.typ == TypeString {
		if d.varLen {
			b.WriteString("(*)")
		} else {
			fmt.Fprintf(&b, "(%d)", d.length)
		}
	}
	for _, x := range d.dims {
		fmt.Fprintf(&b, "[%d]", x)
	}
	if d.variant != VariantNone {
		fmt.Fprintf(&b, "@%s", d.variant)
	}
	return b.String()
}

// Builder assembles a Descriptor. The zero Builder is not usable; create one
// with NewBuilder.
type Builder struct {
	d Descriptor
}

// NewBuilder starts a descriptor for member name of type t.
func NewBuilder(name string, t Type) *Builder {
	return &Builder{d: Descriptor{name: name, typ: t, offset: Packed}}
}

// FieldName sets the host field name when it differs from the member name.
func (b *Builder) FieldName(name string) *Builder { b.d.fieldName = name; return b }

// Type replaces the logical type.
func (b *Builder) Type(t Type) *Builder { b.d.typ = t; return b }

// Dims sets the array extents.
func (b *Builder) Dims(dims ...int) *Builder { b.d.dims = slices.Clone(dims); return b }

// Length sets the byte width of fixed-length string elements.
func (b *Builder) Length(n int) *Builder { b.d.length = n; return b }

// Enum sets the enumeration schema.
func (b *Builder) Enum(e *EnumType) *Builder { b.d.enum = e; return b }

// Unsigned marks an integer member unsigned.
func (b *Builder) Unsigned(v bool) *Builder { b.d.unsigned = v; return b }

// VariableLength marks a string member variable-length.
func (b *Builder) VariableLength(v bool) *Builder { b.d.varLen = v; return b }

// Reference marks the member as a reference.
func (b *Builder) Reference(v bool) *Builder { b.d.ref = v; return b }

// ExplicitLength makes a fixed-length string store its logical length.
func (b *Builder) ExplicitLength(v bool) *Builder { b.d.explicitLen = v; return b }

// Variant sets the type variant.
func (b *Builder) Variant(v Variant) *Builder { b.d.variant = v; return b }

// Storage declares the external storage type the member must match.
func (b *Builder) Storage(s StorageType) *Builder {
	s.Dims = slices.Clone(s.Dims)
	b.d.storage = &s
	return b
}

// Offset pins the member at a byte offset dictated by an external layout.
func (b *Builder) Offset(off int) *Builder { b.d.offset = off; return b }

// Build validates and freezes the descriptor.
func (b *Builder) Build() (Descriptor, error) {
	d := b.d
	d.dims = slices.Clone(b.d.dims)

	if d.name == "" {
		return Descriptor{}, Mappingf(d.FieldName(), "empty member name")
	}
	if d.offset < Packed {
		return Descriptor{}, Mappingf(d.name, "negative offset %d", d.offset)
	}
	if d.length < 0 {
		return Descriptor{}, Mappingf(d.name, "negative length %d", d.length)
	}
	for _, x := range d.dims {
		if x < 0 {
			return Descriptor{}, Mappingf(d.name, "negative dimension %d", x)
		}
		if x == 0 {
			return Descriptor{}, Mappingf(d.name, "array member declares length 0")
		}
	}

	// Normalize orthogonal facets into the logical type.
	if d.ref {
		d.typ = TypeReference
		d.length = 0
		d.unsigned = false
	}
	switch {
	case d.variant.IsDuration():
		if d.typ.IsInteger() {
			d.typ = TypeDuration
		}
		if d.typ != TypeDuration {
			return Descriptor{}, Mappingf(d.name, "duration variant %s on %s member", d.variant, d.typ)
		}
	case d.variant == VariantTimestampMillis:
		if d.typ.IsInteger() {
			d.typ = TypeTime
		}
		if d.typ != TypeTime {
			return Descriptor{}, Mappingf(d.name, "timestamp variant on %s member", d.typ)
		}
	case d.variant == VariantBool:
		if d.typ.IsInteger() {
			d.typ = TypeBool
		}
		if d.typ != TypeBool {
			return Descriptor{}, Mappingf(d.name, "bool variant on %s member", d.typ)
		}
		d.variant = VariantNone
	case d.variant == VariantEnum && d.typ != TypeEnum:
		if !d.typ.IsInteger() {
			return Descriptor{}, Mappingf(d.name, "enum variant on %s member", d.typ)
		}
		d.typ = TypeEnum
	}

	switch d.typ {
	case TypeInvalid:
		return Descriptor{}, Mappingf(d.name, "no logical type")
	case TypeDuration:
		if d.variant == VariantNone {
			d.variant = DurationVariant(DefaultTimeUnit)
		}
	case TypeTime:
		d.variant = VariantTimestampMillis
	case TypeReference:
		d.ref = true
	case TypeEnum:
		if d.enum == nil {
			return Descriptor{}, Mappingf(d.name, "enumeration member has no resolvable enumeration schema")
		}
		d.variant = VariantEnum
	case TypeBitSet:
		if len(d.dims) != 1 {
			return Descriptor{}, Mappingf(d.name, "bitset member needs exactly one dimension (word count), got %d", len(d.dims))
		}
		d.variant = VariantBitField
	case TypeString:
		if d.varLen {
			d.length = 0
			if d.explicitLen {
				return Descriptor{}, Mappingf(d.name, "explicit length on variable-length string")
			}
		} else if d.length == 0 {
			return Descriptor{}, Mappingf(d.name, "fixed-length string declares length 0")
		}
	}

	if d.typ != TypeString {
		if d.length > 1 {
			return Descriptor{}, Mappingf(d.name, "length %d requested on non-string %s member", d.length, d.typ)
		}
		d.length = 0
		if d.varLen {
			return Descriptor{}, Mappingf(d.name, "variable length requested on %s member", d.typ)
		}
		if d.explicitLen {
			return Descriptor{}, Mappingf(d.name, "explicit length requested on %s member", d.typ)
		}
	}
	if d.unsigned && !d.typ.IsInteger() {
		return Descriptor{}, Mappingf(d.name, "unsigned requested on %s member", d.typ)
	}
	if d.enum != nil && d.typ != TypeEnum {
		return Descriptor{}, Mappingf(d.name, "enumeration schema on %s member", d.typ)
	}
	return d, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
