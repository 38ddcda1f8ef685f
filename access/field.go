package access

import (
	"fmt"
	"reflect"

	"github.com/hupe1980/compound/member"
)

type fieldAccessor struct {
	name  string
	field string
	index []int
}

func newFieldAccessor(t reflect.Type, d member.Descriptor, bindings *Bindings) (Accessor, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &member.AccessError{Member: d.Name(), Pattern: Field.String(), Reason: fmt.Sprintf("host type %v is not a struct", t)}
	}
	if b, ok := bindings.lookup(t, d.FieldName()); ok {
		return boundAccessor{name: d.Name(), binding: b}, nil
	}
	sf, ok := t.FieldByName(d.FieldName())
	if !ok {
		return nil, &member.AccessError{Member: d.Name(), Pattern: Field.String(), Reason: fmt.Sprintf("%v has no field %q", t, d.FieldName())}
	}
	if !sf.IsExported() {
		return nil, &member.AccessError{Member: d.Name(), Pattern: Field.String(), Reason: fmt.Sprintf("field %q of %v is not exported", d.FieldName(), t)}
	}
	return fieldAccessor{name: d.Name(), field: d.FieldName(), index: sf.Index}, nil
}

func (a fieldAccessor) Load(rec reflect.Value) (reflect.Value, error) {
	if rec.Kind() != reflect.Struct {
		return reflect.Value{}, a.err("record is %s, not a struct", rec.Kind())
	}
	v, err := rec.FieldByIndexErr(a.index)
	if err != nil {
		return reflect.Value{}, a.err("%v", err)
	}
	return v, nil
}

func (a fieldAccessor) Store(rec reflect.Value, fill func(dst reflect.Value) error) error {
	if rec.Kind() != reflect.Struct {
		return a.err("record is %s, not a struct", rec.Kind())
	}
	v := rec
	for i, x := range a.index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return a.err("cannot allocate embedded %v", v.Type())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	if !v.CanSet() {
		return a.err("field %q is not settable", a.field)
	}
	return fill(v)
}

func (a fieldAccessor) err(format string, args ...any) error {
	return &member.AccessError{Member: a.name, Pattern: Field.String(), Reason: fmt.Sprintf(format, args...)}
}

// Binding reads and writes one member of a struct without reflection. rec is
// always a pointer to the bound struct type.
type Binding struct {
	Get func(rec any) (any, error)
	Set func(rec any, v any) error
}

// Bindings holds explicit getter/setter pairs keyed by struct type and field
// name. A bound member bypasses reflective field lookup.
//
// Bindings are registered before codecs are built and must not be modified
// concurrently with a build.
type Bindings struct {
	byType map[reflect.Type]map[string]Binding
}

// NewBindings returns an empty set of bindings.
func NewBindings() *Bindings {
	return &Bindings{byType: make(map[reflect.Type]map[string]Binding)}
}

// Bind registers a typed getter/setter pair for field of T.
//
//	access.Bind(b, "ID",
//	    func(r *Row) any { return r.ID },
//	    func(r *Row, v any) error { r.ID = v.(uint32); return nil })
func Bind[T any](b *Bindings, field string, get func(*T) any, set func(*T, any) error) {
	t := reflect.TypeFor[T]()
	m := b.byType[t]
	if m == nil {
		m = make(map[string]Binding)
		b.byType[t] = m
	}
	m[field] = Binding{
		Get: func(rec any) (any, error) {
			p, ok := rec.(*T)
			if !ok {
				return nil, fmt.Errorf("binding for %v got %T", t, rec)
			}
			return get(p), nil
		},
		Set: func(rec any, v any) error {
			p, ok := rec.(*T)
			if !ok {
				return fmt.Errorf("binding for %v got %T", t, rec)
			}
			return set(p, v)
		},
	}
}

func (b *Bindings) lookup(t reflect.Type, field string) (Binding, bool) {
	if b == nil {
		return Binding{}, false
	}
	bd, ok := b.byType[t][field]
	return bd, ok
}

type boundAccessor struct {
	name    string
	binding Binding
}

func (a boundAccessor) Load(rec reflect.Value) (reflect.Value, error) {
	if !rec.CanAddr() {
		return reflect.Value{}, a.err("record is not addressable")
	}
	v, err := a.binding.Get(rec.Addr().Interface())
	if err != nil {
		return reflect.Value{}, a.err("%v", err)
	}
	return reflect.ValueOf(v), nil
}

func (a boundAccessor) Store(rec reflect.Value, fill func(dst reflect.Value) error) error {
	if !rec.CanAddr() {
		return a.err("record is not addressable")
	}
	dst := reflect.New(reflect.TypeFor[any]()).Elem()
	if err := fill(dst); err != nil {
		return err
	}
	if err := a.binding.Set(rec.Addr().Interface(), dst.Interface()); err != nil {
		return a.err("%v", err)
	}
	return nil
}

func (a boundAccessor) err(format string, args ...any) error {
	return &member.AccessError{Member: a.name, Pattern: Field.String(), Reason: fmt.Sprintf(format, args...)}
}
