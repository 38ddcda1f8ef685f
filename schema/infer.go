package schema

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/compound/member"
)

var (
	stdDurationType = reflect.TypeFor[time.Duration]()
	durationType    = reflect.TypeFor[member.Duration]()
	timeType        = reflect.TypeFor[time.Time]()
	referenceType   = reflect.TypeFor[member.Reference]()
	enumValueType   = reflect.TypeFor[member.EnumValue]()
	enumeratedType  = reflect.TypeFor[member.Enumerated]()
	bitSetType      = reflect.TypeFor[bitset.BitSet]()
	bitSetPtrType   = reflect.TypeFor[*bitset.BitSet]()
	roaringPtrType  = reflect.TypeFor[*roaring.Bitmap]()
)

// unknown marks an extent that has to come from samples.
const unknown = -1

var errUntyped = errors.New("interface value without a dynamic type")

// shape is the logical type and extents inferred for a host type.
type shape struct {
	typ      member.Type
	dims     []int
	unsigned bool
	enum     *member.EnumType
}

func (s shape) resolved() bool {
	for _, d := range s.dims {
		if d == unknown {
			return false
		}
	}
	return true
}

// merge fills the unknown extents and the enumeration schema of s from a
// shape inferred from a sample. Bitsets keep the largest word count.
func (s *shape) merge(o shape) {
	if len(o.dims) == len(s.dims) {
		for i, d := range o.dims {
			switch {
			case d == unknown:
			case s.dims[i] == unknown:
				s.dims[i] = d
			case s.typ == member.TypeBitSet && d > s.dims[i]:
				s.dims[i] = d
			}
		}
	}
	if s.enum == nil {
		s.enum = o.enum
	}
}

// infer derives the shape of host type t. v, if valid, holds a value of t
// and resolves interfaces and runtime extents.
func infer(t reflect.Type, v reflect.Value) (shape, error) {
	if s, ok := inferLeaf(t, v); ok {
		return s, nil
	}
	switch t.Kind() {
	case reflect.Interface:
		if !v.IsValid() || v.IsNil() {
			return shape{}, errUntyped
		}
		return infer(v.Elem().Type(), v.Elem())
	case reflect.Pointer:
		if v.IsValid() && !v.IsNil() {
			return infer(t.Elem(), v.Elem())
		}
		return infer(t.Elem(), reflect.Value{})
	case reflect.Array:
		s, err := infer(t.Elem(), firstElem(v))
		if err != nil {
			return shape{}, err
		}
		s.dims = append([]int{t.Len()}, s.dims...)
		return s, nil
	case reflect.Slice:
		n := unknown
		if v.IsValid() && !v.IsNil() {
			n = v.Len()
		}
		s, err := infer(t.Elem(), firstElem(v))
		if err != nil {
			return shape{}, err
		}
		s.dims = append([]int{n}, s.dims...)
		return s, nil
	}
	return shape{}, fmt.Errorf("unsupported type %s", t)
}

func inferLeaf(t reflect.Type, v reflect.Value) (shape, bool) {
	switch t {
	case stdDurationType, durationType:
		return shape{typ: member.TypeDuration}, true
	case timeType:
		return shape{typ: member.TypeTime}, true
	case referenceType:
		return shape{typ: member.TypeReference}, true
	case enumValueType:
		s := shape{typ: member.TypeEnum}
		if v.IsValid() {
			s.enum = v.Interface().(member.EnumValue).Type
		}
		return s, true
	case bitSetType, bitSetPtrType, roaringPtrType:
		return shape{typ: member.TypeBitSet, dims: []int{bitSetWords(v)}}, true
	}
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer && t.Implements(enumeratedType) {
		e := reflect.Zero(t).Interface().(member.Enumerated)
		return shape{typ: member.TypeEnum, enum: e.EnumType()}, true
	}
	switch k := t.Kind(); k {
	case reflect.Bool:
		return shape{typ: member.TypeBool}, true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		typ, _ := member.IntegerType(int(t.Size()))
		return shape{typ: typ}, true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		typ, _ := member.IntegerType(int(t.Size()))
		return shape{typ: typ, unsigned: true}, true
	case reflect.Float32:
		return shape{typ: member.TypeFloat32}, true
	case reflect.Float64:
		return shape{typ: member.TypeFloat64}, true
	case reflect.String:
		return shape{typ: member.TypeString}, true
	}
	return shape{}, false
}

// bitSetWords returns the word count of a bitset sample.
func bitSetWords(v reflect.Value) int {
	if !v.IsValid() {
		return unknown
	}
	var n int
	switch x := v.Interface().(type) {
	case *bitset.BitSet:
		if x != nil {
			n = len(x.Words())
		}
	case bitset.BitSet:
		n = len(x.Words())
	case *roaring.Bitmap:
		if x != nil && !x.IsEmpty() {
			n = int(x.Maximum()/64) + 1
		}
	}
	if n == 0 {
		return unknown
	}
	return n
}

// firstElem returns the first non-nil element of slice or array v.
func firstElem(v reflect.Value) reflect.Value {
	if !v.IsValid() || (v.Kind() == reflect.Slice && v.IsNil()) {
		return reflect.Value{}
	}
	for i := range v.Len() {
		e := v.Index(i)
		switch e.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			if e.IsNil() {
				continue
			}
		}
		return e
	}
	return reflect.Value{}
}

// walkStrings calls fn for every string held by v.
func walkStrings(v reflect.Value, fn func(string)) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.String:
		fn(v.String())
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			walkStrings(v.Index(i), fn)
		}
	}
}

// isLeafStruct reports whether struct type t is encoded as a single member
// rather than flattened as an embedded struct.
func isLeafStruct(t reflect.Type) bool {
	_, ok := inferLeaf(t, reflect.Value{})
	return ok
}
