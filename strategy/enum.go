package strategy

import (
	"reflect"

	"github.com/hupe1980/compound/internal/conv"
	"github.com/hupe1980/compound/member"
)

var enumValueType = reflect.TypeFor[member.EnumValue]()

// Enum stores enumeration ordinals in the minimal width covering the
// cardinality of the schema.
type Enum struct{}

// Name implements Strategy.
func (Enum) Name() string { return "enum" }

// CanHandle implements Strategy.
func (Enum) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type() == member.TypeEnum || (ext != nil && (ext.Class == member.ClassEnum || ext.Variant == member.VariantEnum))
}

// NewCodec implements Strategy.
func (Enum) NewCodec(d member.Descriptor, ext *member.StorageType, _ Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassEnum, member.ClassInteger); err != nil {
		return nil, err
	}
	typ := d.Enum()
	if ext != nil && ext.Enum != nil {
		if typ != nil && !typ.Equal(ext.Enum) {
			return nil, member.Mappingf(d.Name(), "enumeration %q disagrees with storage enumeration %q", typ.Name, ext.Enum.Name)
		}
		typ = ext.Enum
	}
	if typ == nil || typ.Len() == 0 {
		return nil, member.Mappingf(d.Name(), "enumeration member has no resolvable enumeration schema")
	}
	size := typ.StorageSize()
	if ext != nil && ext.Size != 0 {
		if !conv.ValidWidth(ext.Size) || ext.Size < size {
			return nil, member.Mappingf(d.Name(), "enumeration %q with %d values does not fit %d bytes", typ.Name, typ.Len(), ext.Size)
		}
		size = ext.Size
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	return newShaped(d.Name(), enumElem{name: d.Name(), typ: typ, size: size}, dims), nil
}

type enumElem struct {
	name string
	typ  *member.EnumType
	size int
}

func (e enumElem) width() int { return e.size }

func (e enumElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassEnum, Size: e.size, Enum: e.typ, Variant: member.VariantEnum}
}

func (e enumElem) canonical(ro *ReadOptions) reflect.Type {
	switch ro.EnumAs {
	case member.EnumAsOrdinal:
		return reflect.TypeFor[int]()
	case member.EnumAsName:
		return reflect.TypeFor[string]()
	default:
		return enumValueType
	}
}

func (e enumElem) put(dst []byte, v reflect.Value) error {
	ord, err := e.ordinal(v)
	if err != nil {
		return err
	}
	if ord < 0 || ord >= e.typ.Len() {
		return member.Valuef(e.name, "ordinal %d out of range for enumeration %q", ord, e.typ.Name)
	}
	conv.PutUint(dst, e.size, uint64(ord))
	return nil
}

func (e enumElem) ordinal(v reflect.Value) (int, error) {
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case member.EnumValue:
			if x.Type != nil && !e.typ.Equal(x.Type) {
				return 0, member.Valuef(e.name, "value of enumeration %q stored in %q", x.Type.Name, e.typ.Name)
			}
			return x.Ordinal, nil
		case member.Enumerated:
			if t := x.EnumType(); t != nil && !e.typ.Equal(t) {
				return 0, member.Valuef(e.name, "value of enumeration %q stored in %q", t.Name, e.typ.Name)
			}
			return x.Ordinal(), nil
		}
	}
	if v.Kind() == reflect.String {
		ord, ok := e.typ.Ordinal(v.String())
		if !ok {
			return 0, member.Valuef(e.name, "unknown %s value %q", e.typ.Name, v.String())
		}
		return ord, nil
	}
	x, err := hostInt(e.name, v)
	if err != nil {
		return 0, err
	}
	if x > uint64(e.typ.Len()) {
		return -1, nil
	}
	return int(x), nil
}

func (e enumElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	raw := conv.Uint(src, e.size)
	if raw >= uint64(e.typ.Len()) {
		return member.Valuef(e.name, "stored ordinal %d out of range for enumeration %q", raw, e.typ.Name)
	}
	ord := int(raw)
	switch {
	case dst.Type() == enumValueType:
		dst.Set(reflect.ValueOf(member.EnumValue{Type: e.typ, Ordinal: ord}))
	case dst.Kind() == reflect.String:
		dst.SetString(e.typ.Values[ord])
	default:
		return setUint(e.name, dst, raw)
	}
	return nil
}

func (enumElem) bulk(reflect.Type) bool { return false }
