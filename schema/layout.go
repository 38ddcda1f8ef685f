package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/compound/member"
)

// Layout is the committed form of a compound schema as exchanged with the
// storage engine: the record size, the record-level variant and, per
// member, its offset and storage type.
type Layout struct {
	Name    string         `json:"name"`
	Size    int            `json:"size"`
	Variant member.Variant `json:"variant,omitempty"`
	Members []MemberLayout `json:"members"`
}

// MemberLayout places one member in the record.
type MemberLayout struct {
	Name    string             `json:"name"`
	Offset  int                `json:"offset"`
	Storage member.StorageType `json:"storage"`
}

// End returns the first byte after the member.
func (m MemberLayout) End() int { return m.Offset + m.Storage.ByteSize() }

// Equal reports whether m and o place the same member the same way.
func (m MemberLayout) Equal(o MemberLayout) bool {
	return m.Name == o.Name && m.Offset == o.Offset && m.Storage.Equal(o.Storage)
}

// Names returns the member names in declaration order.
func (l Layout) Names() []string {
	names := make([]string, len(l.Members))
	for i, m := range l.Members {
		names[i] = m.Name
	}
	return names
}

// Member returns the placement of the named member.
func (l Layout) Member(name string) (MemberLayout, bool) {
	i := slices.IndexFunc(l.Members, func(m MemberLayout) bool { return m.Name == name })
	if i < 0 {
		return MemberLayout{}, false
	}
	return l.Members[i], true
}

// Equal reports whether l and o describe the same record.
func (l Layout) Equal(o Layout) bool {
	return l.Size == o.Size && l.Variant == o.Variant &&
		slices.EqualFunc(l.Members, o.Members, MemberLayout.Equal)
}

// Validate checks that every member lies within the record and that no two
// members overlap.
func (l Layout) Validate() error {
	if l.Size < 0 {
		return member.Mappingf(l.Name, "negative record size %d", l.Size)
	}
	sorted := slices.Clone(l.Members)
	slices.SortStableFunc(sorted, func(a, b MemberLayout) int { return a.Offset - b.Offset })
	prev := MemberLayout{}
	for i, m := range sorted {
		switch {
		case m.Offset < 0:
			return member.Mappingf(m.Name, "negative offset %d", m.Offset)
		case m.End() > l.Size:
			return member.Mappingf(m.Name, "slot [%d,%d) exceeds record size %d", m.Offset, m.End(), l.Size)
		case i > 0 && m.Offset < prev.End():
			return member.Mappingf(m.Name, "slot [%d,%d) overlaps %q", m.Offset, m.End(), prev.Name)
		}
		prev = m
	}
	return nil
}

// String returns a one-line description such as
// "Row(13){id@0:uint32 label@4:string(8) flags@12:enum<Flags>}".
func (l Layout) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%d)", l.Name, l.Size)
	if l.Variant != member.VariantNone {
		fmt.Fprintf(&b, "@%s", l.Variant)
	}
	b.WriteByte('{')
	for i, m := range l.Members {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s@%d:%s", m.Name, m.Offset, m.Storage)
	}
	b.WriteByte('}')
	return b.String()
}

// FromLayout derives descriptors from a committed layout. Every descriptor
// pins its offset and declares its storage type, so a record codec built
// from the schema reproduces the layout exactly; the recorded variants
// select the strategies. Enumerations without values are resolved by name
// from the Builder's registry.
func (b *Builder) FromLayout(l Layout) (*Schema, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	s := &Schema{Name: l.Name, Variant: l.Variant, Size: l.Size}
	for _, m := range l.Members {
		d, err := b.fromStorage(m)
		if err != nil {
			return nil, err
		}
		s.Members = append(s.Members, d)
	}
	if err := checkNames(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *Builder) fromStorage(m MemberLayout) (member.Descriptor, error) {
	st := m.Storage
	bld := member.NewBuilder(m.Name, member.TypeInvalid).
		Dims(st.Dims...).
		Offset(m.Offset)

	switch st.Class {
	case member.ClassInteger:
		switch {
		case st.Variant.IsDuration():
			bld.Type(member.TypeDuration).Variant(st.Variant)
		case st.Variant == member.VariantTimestampMillis:
			bld.Type(member.TypeTime)
		case st.Variant == member.VariantBool:
			bld.Type(member.TypeBool)
		default:
			typ, ok := member.IntegerType(st.Size)
			if !ok {
				return member.Descriptor{}, member.Mappingf(m.Name, "unsupported integer width %d", st.Size)
			}
			bld.Type(typ).Unsigned(!st.Signed)
		}
	case member.ClassFloat:
		switch st.Size {
		case 4:
			bld.Type(member.TypeFloat32)
		case 8:
			bld.Type(member.TypeFloat64)
		default:
			return member.Descriptor{}, member.Mappingf(m.Name, "unsupported float width %d", st.Size)
		}
	case member.ClassString:
		bld.Type(member.TypeString)
		switch {
		case st.VariableLength:
			bld.VariableLength(true)
		case st.ExplicitLength:
			bld.Length(st.Size - 4).ExplicitLength(true)
		default:
			bld.Length(st.Size)
		}
	case member.ClassEnum:
		e := st.Enum
		if e != nil && len(e.Values) == 0 {
			var ok bool
			if e, ok = b.enums.Lookup(e.Name); !ok {
				return member.Descriptor{}, member.Mappingf(m.Name, "enumeration %q is not registered", st.Enum.Name)
			}
		}
		bld.Type(member.TypeEnum).Enum(e)
		st.Enum = e
	case member.ClassBitField:
		bld.Type(member.TypeBitSet)
	case member.ClassReference:
		bld.Type(member.TypeReference)
	default:
		return member.Descriptor{}, member.Mappingf(m.Name, "unsupported storage class %s", st.Class)
	}
	return bld.Storage(st).Build()
}
