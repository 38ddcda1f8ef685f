package strategy

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/hupe1980/compound/internal/conv"
	"github.com/hupe1980/compound/member"
)

var (
	signedTypes = map[int]reflect.Type{
		1: reflect.TypeFor[int8](),
		2: reflect.TypeFor[int16](),
		4: reflect.TypeFor[int32](),
		8: reflect.TypeFor[int64](),
	}
	unsignedTypes = map[int]reflect.Type{
		1: reflect.TypeFor[uint8](),
		2: reflect.TypeFor[uint16](),
		4: reflect.TypeFor[uint32](),
		8: reflect.TypeFor[uint64](),
	}
)

// Integer stores integers in 1, 2, 4 or 8 little-endian bytes, independent
// of the width of the host type. Unsigned members store negative values with
// the two's-complement bias and decode to unsigned Go types.
type Integer struct{}

// Name implements Strategy.
func (Integer) Name() string { return "integer" }

// CanHandle implements Strategy.
func (Integer) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type().IsInteger() || (ext != nil && ext.Class == member.ClassInteger && ext.Variant == member.VariantNone)
}

// NewCodec implements Strategy.
func (Integer) NewCodec(d member.Descriptor, ext *member.StorageType, _ Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassInteger); err != nil {
		return nil, err
	}
	size, unsigned := d.Type().NativeSize(), d.Unsigned()
	if ext != nil {
		if ext.Size != 0 {
			size = ext.Size
		}
		unsigned = !ext.Signed
	}
	if !conv.ValidWidth(size) {
		return nil, member.Mappingf(d.Name(), "unsupported integer width %d", size)
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	return newShaped(d.Name(), intElem{name: d.Name(), size: size, unsigned: unsigned}, dims), nil
}

type intElem struct {
	name     string
	size     int
	unsigned bool
}

func (e intElem) width() int { return e.size }

func (e intElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassInteger, Size: e.size, Signed: !e.unsigned}
}

func (e intElem) canonical(*ReadOptions) reflect.Type {
	if e.unsigned {
		return unsignedTypes[e.size]
	}
	return signedTypes[e.size]
}

func (e intElem) put(dst []byte, v reflect.Value) error {
	x, neg, err := hostInteger(e.name, v)
	if err != nil {
		return err
	}
	if !e.fits(x, neg) {
		if neg {
			return member.Valuef(e.name, "value %d out of range for %d-byte %s storage", int64(x), e.size, e.kind())
		}
		return member.Valuef(e.name, "value %d out of range for %d-byte %s storage", x, e.size, e.kind())
	}
	if neg && e.unsigned {
		x = conv.Bias(int64(x), e.size)
	}
	conv.PutUint(dst, e.size, x)
	return nil
}

// fits reports whether a host value lies in the slot's range. Unsigned
// slots also take negative values down to the signed minimum, stored with
// the bias.
func (e intElem) fits(x uint64, neg bool) bool {
	switch {
	case neg:
		return conv.FitsSigned(int64(x), e.size)
	case e.unsigned:
		return conv.FitsUnsigned(x, e.size)
	default:
		return x <= math.MaxInt64 && conv.FitsSigned(int64(x), e.size)
	}
}

func (e intElem) kind() string {
	if e.unsigned {
		return "unsigned"
	}
	return "signed"
}

func (e intElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	raw := conv.Uint(src, e.size)
	if e.unsigned {
		return setUint(e.name, dst, raw)
	}
	return setInt(e.name, dst, conv.SignExtend(raw, e.size))
}

func (e intElem) bulk(t reflect.Type) bool {
	k := t.Kind()
	if int(t.Size()) != e.size {
		return false
	}
	// Unsigned hosts can exceed a signed slot of the same width.
	return isIntKind(k) || (e.unsigned && isUintKind(k) && k != reflect.Uintptr)
}

// Float stores IEEE-754 binary32 or binary64 values, converting between the
// host and storage widths.
type Float struct{}

// Name implements Strategy.
func (Float) Name() string { return "float" }

// CanHandle implements Strategy.
func (Float) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type().IsFloat() || (ext != nil && ext.Class == member.ClassFloat)
}

// NewCodec implements Strategy.
func (Float) NewCodec(d member.Descriptor, ext *member.StorageType, _ Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassFloat); err != nil {
		return nil, err
	}
	size := d.Type().NativeSize()
	if ext != nil && ext.Size != 0 {
		size = ext.Size
	}
	if size != 4 && size != 8 {
		return nil, member.Mappingf(d.Name(), "unsupported float width %d", size)
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	return newShaped(d.Name(), floatElem{name: d.Name(), size: size}, dims), nil
}

type floatElem struct {
	name string
	size int
}

func (e floatElem) width() int { return e.size }

func (e floatElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassFloat, Size: e.size, Signed: true}
}

func (e floatElem) canonical(*ReadOptions) reflect.Type {
	if e.size == 4 {
		return reflect.TypeFor[float32]()
	}
	return reflect.TypeFor[float64]()
}

func (e floatElem) put(dst []byte, v reflect.Value) error {
	f, err := hostFloat(e.name, v)
	if err != nil {
		return err
	}
	if e.size == 4 {
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(f)))
	} else {
		binary.LittleEndian.PutUint64(dst, math.Float64bits(f))
	}
	return nil
}

func (e floatElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	var f float64
	if e.size == 4 {
		f = float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))
	} else {
		f = math.Float64frombits(binary.LittleEndian.Uint64(src))
	}
	switch k := dst.Kind(); {
	case isFloatKind(k):
		dst.SetFloat(f)
	case isIntKind(k):
		dst.SetInt(int64(f))
	case isUintKind(k):
		dst.SetUint(uint64(f))
	default:
		return member.Valuef(e.name, "cannot decode float into %s", dst.Type())
	}
	return nil
}

func (e floatElem) bulk(t reflect.Type) bool {
	return (t.Kind() == reflect.Float32 && e.size == 4) || (t.Kind() == reflect.Float64 && e.size == 8)
}

// Bool stores booleans as a single 0 or 1 byte.
type Bool struct{}

// Name implements Strategy.
func (Bool) Name() string { return "bool" }

// CanHandle implements Strategy.
func (Bool) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type() == member.TypeBool || (ext != nil && ext.Variant == member.VariantBool)
}

// NewCodec implements Strategy.
func (Bool) NewCodec(d member.Descriptor, ext *member.StorageType, _ Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassInteger); err != nil {
		return nil, err
	}
	if ext != nil && ext.Size != 0 && ext.Size != 1 {
		return nil, member.Mappingf(d.Name(), "bool storage must be 1 byte, got %d", ext.Size)
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	return newShaped(d.Name(), boolElem{name: d.Name()}, dims), nil
}

type boolElem struct {
	name string
}

func (boolElem) width() int { return 1 }

func (boolElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassInteger, Size: 1, Variant: member.VariantBool}
}

func (boolElem) canonical(*ReadOptions) reflect.Type { return reflect.TypeFor[bool]() }

func (e boolElem) put(dst []byte, v reflect.Value) error {
	x, err := hostInt(e.name, v)
	if err != nil {
		return err
	}
	dst[0] = 0
	if x != 0 {
		dst[0] = 1
	}
	return nil
}

func (e boolElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	if dst.Kind() == reflect.Bool {
		dst.SetBool(src[0] != 0)
		return nil
	}
	return setUint(e.name, dst, uint64(src[0]))
}

func (boolElem) bulk(reflect.Type) bool { return false }
