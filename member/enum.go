package member

import (
	"fmt"
	"slices"
	"sync"
)

// EnumType is an enumeration schema: an ordered list of symbolic names whose
// positions are the stored ordinals.
type EnumType struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// NewEnumType returns an enumeration schema. Names must be unique.
func NewEnumType(name string, values ...string) (*EnumType, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("enumeration %q has no values", name)
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return nil, fmt.Errorf("enumeration %q has duplicate value %q", name, v)
		}
		seen[v] = struct{}{}
	}
	return &EnumType{Name: name, Values: slices.Clone(values)}, nil
}

// MustEnumType is like NewEnumType but panics on error.
func MustEnumType(name string, values ...string) *EnumType {
	e, err := NewEnumType(name, values...)
	if err != nil {
		panic(err)
	}
	return e
}

// Len returns the cardinality of the enumeration.
func (e *EnumType) Len() int { return len(e.Values) }

// StorageSize returns the minimal byte width covering the cardinality.
func (e *EnumType) StorageSize() int {
	switch n := len(e.Values); {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

// Ordinal returns the ordinal of name.
func (e *EnumType) Ordinal(name string) (int, bool) {
	i := slices.Index(e.Values, name)
	return i, i >= 0
}

// ValueOf returns the EnumValue with the given ordinal.
func (e *EnumType) ValueOf(ordinal int) (EnumValue, error) {
	if ordinal < 0 || ordinal >= len(e.Values) {
		return EnumValue{}, fmt.Errorf("ordinal %d out of range for enumeration %q (%d values)", ordinal, e.Name, len(e.Values))
	}
	return EnumValue{Type: e, Ordinal: ordinal}, nil
}

// Equal reports whether e and o have the same name and values.
func (e *EnumType) Equal(o *EnumType) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	return e.Name == o.Name && slices.Equal(e.Values, o.Values)
}

// EnumValue is one value of an enumeration.
type EnumValue struct {
	Type    *EnumType
	Ordinal int
}

// Name returns the symbolic name of v.
func (v EnumValue) Name() string {
	if v.Type == nil || v.Ordinal < 0 || v.Ordinal >= len(v.Type.Values) {
		return ""
	}
	return v.Type.Values[v.Ordinal]
}

// String implements fmt.Stringer.
func (v EnumValue) String() string { return v.Name() }

// Enumerated is implemented by host values that carry their own enumeration
// schema, typically named integer types:
//
//	type Color uint8
//
//	var colorType = member.MustEnumType("Color", "RED", "GREEN", "BLUE")
//
//	func (Color) EnumType() *member.EnumType { return colorType }
//	func (c Color) Ordinal() int              { return int(c) }
type Enumerated interface {
	EnumType() *EnumType
	Ordinal() int
}

// EnumAs selects the shape in which enumeration members are decoded into
// untyped destinations. The stored bytes are the same for every shape.
type EnumAs uint8

const (
	// EnumAsValue decodes to EnumValue.
	EnumAsValue EnumAs = iota
	// EnumAsOrdinal decodes to int.
	EnumAsOrdinal
	// EnumAsName decodes to string.
	EnumAsName
)

// EnumRegistry resolves enumeration schemas by name. It is scoped to one
// schema compilation session and passed explicitly to the schema builder.
// It is safe for concurrent use.
type EnumRegistry struct {
	mu    sync.RWMutex
	types map[string]*EnumType
}

// NewEnumRegistry returns a registry holding types.
func NewEnumRegistry(types ...*EnumType) *EnumRegistry {
	r := &EnumRegistry{types: make(map[string]*EnumType, len(types))}
	for _, t := range types {
		r.types[t.Name] = t
	}
	return r
}

// Register adds t, replacing any schema with the same name.
func (r *EnumRegistry) Register(t *EnumType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name] = t
}

// Lookup returns the schema registered under name.
func (r *EnumRegistry) Lookup(name string) (*EnumType, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}
