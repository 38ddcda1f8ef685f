package access

import (
	"fmt"
	"reflect"

	"github.com/hupe1980/compound/member"
)

// Pattern is one of the ways a host value exposes its members.
type Pattern uint8

const (
	// Field reads and writes the exported fields of a struct.
	Field Pattern = iota
	// Map reads and writes a map keyed by member name.
	Map
	// List reads and writes a ListRecord indexed by member position.
	List
	// Array reads and writes a []any whose length equals the member count.
	Array
)

// String returns the string representation of the Pattern.
func (p Pattern) String() string {
	switch p {
	case Field:
		return "field"
	case Map:
		return "map"
	case List:
		return "list"
	case Array:
		return "array"
	default:
		return "Unknown"
	}
}

var (
	listType = reflect.TypeFor[ListRecord]()
	arrType  = reflect.TypeFor[[]any]()
)

// ListRecord is a positional record. Decoding into a ListRecord rebuilds it
// with exactly one entry per member.
type ListRecord []any

// Accessor reaches one member of a record value.
//
// Accessors are built once per member and are safe for concurrent use.
type Accessor interface {
	// Load returns the member value held by rec.
	Load(rec reflect.Value) (reflect.Value, error)
	// Store hands fill a settable destination for the member and commits
	// the result into rec.
	Store(rec reflect.Value, fill func(dst reflect.Value) error) error
}

// New returns the accessor for member d at declaration position index.
// hostType is the record type for the Field pattern and ignored otherwise.
func New(p Pattern, hostType reflect.Type, d member.Descriptor, index int, bindings *Bindings) (Accessor, error) {
	switch p {
	case Field:
		return newFieldAccessor(hostType, d, bindings)
	case Map:
		return mapAccessor{name: d.Name()}, nil
	case List, Array:
		return indexAccessor{name: d.Name(), index: index, pattern: p}, nil
	default:
		return nil, &member.AccessError{Member: d.Name(), Pattern: p.String(), Reason: "unknown access pattern"}
	}
}

// NewRecord allocates an empty record for pattern p with n members. For the
// Field pattern it returns a pointer to a new hostType value.
func NewRecord(p Pattern, hostType reflect.Type, n int) (reflect.Value, error) {
	switch p {
	case Field:
		if hostType == nil || hostType.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field access needs a struct type, got %v", hostType)
		}
		return reflect.New(hostType), nil
	case Map:
		return reflect.ValueOf(make(map[string]any, n)), nil
	case List:
		return reflect.ValueOf(make(ListRecord, n)), nil
	case Array:
		return reflect.ValueOf(make([]any, n)), nil
	default:
		return reflect.Value{}, fmt.Errorf("unknown access pattern %d", p)
	}
}

// Detect returns the pattern that fits a host value or type.
func Detect(t reflect.Type) (Pattern, bool) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t == nil:
		return 0, false
	case t == listType:
		return List, true
	case t == arrType:
		return Array, true
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		return Map, true
	case t.Kind() == reflect.Struct:
		return Field, true
	default:
		return 0, false
	}
}

// Indirect strips pointers and interfaces from v.
func Indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

type mapAccessor struct {
	name string
}

func (a mapAccessor) Load(rec reflect.Value) (reflect.Value, error) {
	if rec.Kind() != reflect.Map || rec.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, a.err("record is %s, not a string-keyed map", rec.Kind())
	}
	v := rec.MapIndex(reflect.ValueOf(a.name).Convert(rec.Type().Key()))
	if !v.IsValid() {
		return reflect.Value{}, a.err("missing key")
	}
	return v, nil
}

func (a mapAccessor) Store(rec reflect.Value, fill func(dst reflect.Value) error) error {
	if rec.Kind() != reflect.Map || rec.Type().Key().Kind() != reflect.String {
		return a.err("record is %s, not a string-keyed map", rec.Kind())
	}
	if rec.IsNil() {
		return a.err("nil map")
	}
	dst := reflect.New(rec.Type().Elem()).Elem()
	if err := fill(dst); err != nil {
		return err
	}
	rec.SetMapIndex(reflect.ValueOf(a.name).Convert(rec.Type().Key()), dst)
	return nil
}

func (a mapAccessor) err(format string, args ...any) error {
	return &member.AccessError{Member: a.name, Pattern: Map.String(), Reason: fmt.Sprintf(format, args...)}
}

type indexAccessor struct {
	name    string
	index   int
	pattern Pattern
}

func (a indexAccessor) Load(rec reflect.Value) (reflect.Value, error) {
	if rec.Kind() != reflect.Slice && rec.Kind() != reflect.Array {
		return reflect.Value{}, a.err("record is %s, not a slice", rec.Kind())
	}
	if a.index >= rec.Len() {
		return reflect.Value{}, a.err("position %d beyond record length %d", a.index, rec.Len())
	}
	return rec.Index(a.index), nil
}

func (a indexAccessor) Store(rec reflect.Value, fill func(dst reflect.Value) error) error {
	if rec.Kind() != reflect.Slice && rec.Kind() != reflect.Array {
		return a.err("record is %s, not a slice", rec.Kind())
	}
	if a.index >= rec.Len() {
		return a.err("position %d beyond record length %d", a.index, rec.Len())
	}
	dst := rec.Index(a.index)
	if !dst.CanSet() {
		return a.err("position %d is not settable", a.index)
	}
	return fill(dst)
}

func (a indexAccessor) err(format string, args ...any) error {
	return &member.AccessError{Member: a.name, Pattern: a.pattern.String(), Reason: fmt.Sprintf(format, args...)}
}
