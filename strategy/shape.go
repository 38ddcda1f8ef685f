package strategy

import (
	"reflect"
	"slices"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/compound/access"
	"github.com/hupe1980/compound/member"
)

// element encodes a single scalar of a member. Arrays of any rank are
// handled by shaped.
type element interface {
	width() int
	storage() member.StorageType
	// canonical is the Go type decoded into untyped destinations.
	canonical(ro *ReadOptions) reflect.Type
	// put encodes v, which is valid and free of pointers and interfaces.
	put(dst []byte, v reflect.Value) error
	// get decodes into dst, which is settable and not an interface.
	get(src []byte, dst reflect.Value, ro *ReadOptions) error
	// bulk reports whether a host element of type t has exactly the stored
	// byte representation on a little-endian CPU.
	bulk(t reflect.Type) bool
}

// shaped lays out an element across the member's dimensions in row-major
// order. Scalars have no dimensions.
type shaped struct {
	name    string
	elem    element
	dims    []int
	strides []int
	size    int
	st      member.StorageType
}

func newShaped(name string, e element, dims []int) *shaped {
	s := &shaped{
		name:    name,
		elem:    e,
		dims:    slices.Clone(dims),
		strides: make([]int, len(dims)),
	}
	stride := e.width()
	for i := len(dims) - 1; i >= 0; i-- {
		s.strides[i] = stride
		stride *= dims[i]
	}
	s.size = stride
	s.st = e.storage()
	if len(dims) > 0 {
		s.st.Dims = slices.Clone(dims)
	}
	return s
}

func (s *shaped) Size() int { return s.size }

func (s *shaped) Storage() member.StorageType {
	st := s.st
	st.Dims = slices.Clone(s.st.Dims)
	return st
}

func (s *shaped) Put(dst []byte, v reflect.Value) error {
	return s.put(dst, v, 0)
}

func (s *shaped) put(dst []byte, v reflect.Value, axis int) error {
	v = access.Indirect(v)
	if !v.IsValid() {
		if axis < len(s.dims) {
			return &member.DimensionMismatchError{Member: s.name, Axis: axis, Expected: s.dims[axis]}
		}
		return member.Valuef(s.name, "nil value")
	}
	if axis == len(s.dims) {
		return s.elem.put(dst, v)
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return member.Valuef(s.name, "expected %d-dimensional array, got %s", len(s.dims)-axis, v.Type())
	}
	n := s.dims[axis]
	if v.Len() != n {
		return &member.DimensionMismatchError{Member: s.name, Axis: axis, Expected: n, Actual: v.Len()}
	}
	stride := s.strides[axis]
	if axis == len(s.dims)-1 && s.bulkable(v) {
		copy(dst, rawBytes(v, n*stride))
		return nil
	}
	for i := range n {
		if err := s.put(dst[i*stride:(i+1)*stride], v.Index(i), axis+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *shaped) Get(src []byte, dst reflect.Value, ro *ReadOptions) error {
	return s.get(src, dst, 0, readOpts(ro))
}

func (s *shaped) get(src []byte, dst reflect.Value, axis int, ro *ReadOptions) error {
	switch dst.Kind() {
	case reflect.Interface:
		t := s.canonical(axis, ro)
		if !t.AssignableTo(dst.Type()) {
			return member.Valuef(s.name, "cannot decode %s into %s", t, dst.Type())
		}
		tmp := reflect.New(t).Elem()
		if err := s.get(src, tmp, axis, ro); err != nil {
			return err
		}
		dst.Set(tmp)
		return nil
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return s.get(src, dst.Elem(), axis, ro)
	}
	if axis == len(s.dims) {
		return s.elem.get(src, dst, ro)
	}
	n := s.dims[axis]
	switch dst.Kind() {
	case reflect.Slice:
		if dst.IsNil() || dst.Len() != n {
			dst.Set(reflect.MakeSlice(dst.Type(), n, n))
		}
	case reflect.Array:
		if dst.Len() != n {
			return &member.DimensionMismatchError{Member: s.name, Axis: axis, Expected: n, Actual: dst.Len()}
		}
	default:
		return member.Valuef(s.name, "cannot decode %d-dimensional array into %s", len(s.dims)-axis, dst.Type())
	}
	stride := s.strides[axis]
	if axis == len(s.dims)-1 && s.bulkable(dst) {
		copy(rawBytes(dst, n*stride), src)
		return nil
	}
	for i := range n {
		if err := s.get(src[i*stride:(i+1)*stride], dst.Index(i), axis+1, ro); err != nil {
			return err
		}
	}
	return nil
}

func (s *shaped) canonical(axis int, ro *ReadOptions) reflect.Type {
	t := s.elem.canonical(ro)
	for range len(s.dims) - axis {
		t = reflect.SliceOf(t)
	}
	return t
}

func (s *shaped) bulkable(v reflect.Value) bool {
	if cpu.IsBigEndian || v.Len() == 0 {
		return false
	}
	if v.Kind() == reflect.Array && !v.CanAddr() {
		return false
	}
	return s.elem.bulk(v.Type().Elem())
}

// rawBytes returns the backing memory of the first n bytes of slice or
// addressable array v.
func rawBytes(v reflect.Value, n int) []byte {
	return unsafe.Slice((*byte)(v.Index(0).Addr().UnsafePointer()), n)
}

// dimsOf reconciles the descriptor's dimensions with a declared external
// storage type.
func dimsOf(d member.Descriptor, ext *member.StorageType) ([]int, error) {
	dims := d.Dimensions()
	if ext == nil || len(ext.Dims) == 0 {
		return dims, nil
	}
	if len(dims) == 0 {
		return slices.Clone(ext.Dims), nil
	}
	if !slices.Equal(dims, ext.Dims) {
		return nil, member.Mappingf(d.Name(), "dimensions %v disagree with storage dimensions %v", dims, ext.Dims)
	}
	return dims, nil
}
