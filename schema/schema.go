package schema

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/hupe1980/compound/member"
)

// IncludeAll marks a struct as declarative and includes every exported
// field; compound tags customize individual fields.
//
//	type Row struct {
//	    _     schema.IncludeAll
//	    ID    uint32
//	    Label string `compound:"label,len=8"`
//	}
type IncludeAll struct{}

// AnnotatedOnly marks a struct as declarative and includes only fields that
// carry a compound tag.
type AnnotatedOnly struct{}

var (
	includeAllType    = reflect.TypeFor[IncludeAll]()
	annotatedOnlyType = reflect.TypeFor[AnnotatedOnly]()
)

// Schema is the ordered list of member descriptors of one compound record.
type Schema struct {
	// Name identifies the record in variant registries and layouts.
	Name string
	// Variant is the record-level type variant.
	Variant member.Variant
	// Members are the descriptors in declaration order.
	Members []member.Descriptor
	// Type is the host struct type for schemas built from Go types. It is
	// nil for keyed collections and layouts.
	Type reflect.Type
	// Size is the committed record size of a schema read from a layout,
	// which may exceed the end of the last member. Zero means packed.
	Size int
}

// Names returns the member names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Members))
	for i, d := range s.Members {
		names[i] = d.Name()
	}
	return names
}

// Lookup returns the descriptor of the named member.
func (s *Schema) Lookup(name string) (member.Descriptor, bool) {
	for _, d := range s.Members {
		if d.Name() == name {
			return d, true
		}
	}
	return member.Descriptor{}, false
}

// Builder derives schemas from Go types, samples, keyed collections and
// committed layouts. It holds the enumeration schemas and variant overrides
// of one compilation session.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	enums    *member.EnumRegistry
	variants *member.VariantRegistry
}

// NewBuilder returns a Builder. Nil registries are replaced by empty ones.
func NewBuilder(enums *member.EnumRegistry, variants *member.VariantRegistry) *Builder {
	if enums == nil {
		enums = member.NewEnumRegistry()
	}
	if variants == nil {
		variants = member.NewVariantRegistry()
	}
	return &Builder{enums: enums, variants: variants}
}

// Enums returns the enumeration registry.
func (b *Builder) Enums() *member.EnumRegistry { return b.enums }

// Variants returns the variant registry.
func (b *Builder) Variants() *member.VariantRegistry { return b.variants }

// For is FromType for the type parameter T.
func For[T any](b *Builder, name string) (*Schema, error) {
	return b.FromType(name, reflect.TypeFor[T]())
}

// FromType derives the schema of struct type t. Struct types carrying a
// marker field or compound tags are read declaratively; others contribute
// every exported field. An empty name defaults to the type name.
//
// Slices, strings and bitsets without explicit sizes cannot be sized from a
// type alone; use FromSamples for them.
func (b *Builder) FromType(name string, t reflect.Type) (*Schema, error) {
	return b.fromStruct(name, t, nil)
}

// FromSamples derives the schema of the struct type shared by samples and
// sizes strings, slices and bitsets from the sample values: fixed strings
// take the longest sample and store their length explicitly if any sample
// is empty or contains a zero byte, arrays take the extents of the first
// sample that holds them, and bitsets take the largest word count.
func (b *Builder) FromSamples(name string, samples ...any) (*Schema, error) {
	if len(samples) == 0 {
		return nil, member.Mappingf(name, "no samples")
	}
	t := reflect.TypeOf(samples[0])
	vals := make([]reflect.Value, len(samples))
	for i, s := range samples {
		if reflect.TypeOf(s) != t {
			return nil, member.Mappingf(name, "sample %d has type %T, want %v", i, s, t)
		}
		v := reflect.ValueOf(s)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, member.Mappingf(name, "sample %d is nil", i)
			}
			v = v.Elem()
		}
		vals[i] = v
	}
	return b.fromStruct(name, t, vals)
}

// FromMap derives one member per entry of m from the runtime type and shape
// of its value. Members are ordered lexicographically unless order lists
// the keys explicitly.
func (b *Builder) FromMap(name string, m map[string]any, order ...string) (*Schema, error) {
	keys := order
	if len(keys) == 0 {
		keys = make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	} else if len(keys) != len(m) {
		return nil, member.Mappingf(name, "order lists %d keys for %d entries", len(keys), len(m))
	}
	values := make([]any, len(keys))
	for i, k := range keys {
		v, ok := m[k]
		if !ok {
			return nil, member.Mappingf(k, "ordered key missing from map")
		}
		values[i] = v
	}
	return b.FromNamesValues(name, keys, values)
}

// FromNamesValues derives one member per (name, value) pair from the
// runtime type and shape of the value.
func (b *Builder) FromNamesValues(name string, names []string, values []any) (*Schema, error) {
	if len(names) != len(values) {
		return nil, member.Mappingf(name, "%d names for %d values", len(names), len(values))
	}
	s := &Schema{Name: name, Variant: b.variants.Record(name)}
	for i, n := range names {
		if values[i] == nil {
			return nil, member.Mappingf(n, "cannot infer the type of a nil value")
		}
		dr := &draft{name: n, field: n, host: reflect.TypeOf(values[i]), tag: tag{offset: member.Packed}}
		d, err := b.resolve(name, dr, []reflect.Value{reflect.ValueOf(values[i])})
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

func (b *Builder) fromStruct(name string, t reflect.Type, samples []reflect.Value) (*Schema, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, member.Mappingf(name, "host type %v is not a struct", t)
	}
	if name == "" {
		name = t.Name()
	}
	drafts, err := plan(t)
	if err != nil {
		return nil, err
	}
	s := &Schema{Name: name, Variant: b.variants.Record(name), Type: t}
	for _, dr := range drafts {
		vals := make([]reflect.Value, 0, len(samples))
		for _, sv := range samples {
			fv, err := sv.FieldByIndexErr(dr.index)
			if err != nil {
				continue
			}
			vals = append(vals, fv)
		}
		d, err := b.resolve(name, dr, vals)
		if err != nil {
			return nil, err
		}
		s.Members = append(s.Members, d)
	}
	if len(s.Members) == 0 {
		return nil, member.Mappingf(name, "struct %v has no members", t)
	}
	if err := checkNames(s); err != nil {
		return nil, err
	}
	return s, nil
}

func checkNames(s *Schema) error {
	seen := make(map[string]struct{}, len(s.Members))
	for _, d := range s.Members {
		if _, ok := seen[d.Name()]; ok {
			return member.Mappingf(d.Name(), "duplicate member name")
		}
		seen[d.Name()] = struct{}{}
	}
	return nil
}

// draft is a member whose extents may still depend on samples.
type draft struct {
	name  string
	field string
	index []int
	host  reflect.Type
	tag   tag
}

type mode uint8

const (
	modeIntrospective mode = iota
	modeIncludeAll
	modeAnnotatedOnly
)

func detectMode(t reflect.Type) mode {
	m := modeIntrospective
	for i := range t.NumField() {
		f := t.Field(i)
		switch f.Type {
		case annotatedOnlyType:
			return modeAnnotatedOnly
		case includeAllType:
			m = modeIncludeAll
		}
		if _, ok := f.Tag.Lookup(TagKey); ok {
			m = modeIncludeAll
		}
	}
	return m
}

// plan lists the members of struct t. Fields of embedded structs follow
// the struct's own fields; shadowed promoted fields are skipped.
func plan(t reflect.Type) ([]*draft, error) {
	var out []*draft
	seen := make(map[string]struct{})
	if err := walk(t, nil, detectMode(t), seen, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(t reflect.Type, prefix []int, m mode, seen map[string]struct{}, out *[]*draft) error {
	var embedded []reflect.StructField
	var own []*draft
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type == includeAllType || f.Type == annotatedOnlyType {
			continue
		}
		raw, tagged := f.Tag.Lookup(TagKey)
		tg := tag{offset: member.Packed}
		if tagged {
			var err error
			if tg, err = parseTag(f.Name, raw); err != nil {
				return err
			}
		}
		if tg.skip {
			continue
		}
		if f.Anonymous && tg.name == "" {
			et := f.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && !isLeafStruct(f.Type) {
				embedded = append(embedded, f)
				continue
			}
		}
		if m == modeAnnotatedOnly && !tagged {
			continue
		}
		if !f.IsExported() {
			if tagged {
				return member.Mappingf(f.Name, "tagged field is not exported")
			}
			continue
		}
		if _, ok := seen[f.Name]; ok && len(prefix) > 0 {
			continue
		}
		name := tg.name
		if name == "" {
			name = f.Name
		}
		own = append(own, &draft{
			name:  name,
			field: f.Name,
			index: append(slices.Clone(prefix), i),
			host:  f.Type,
			tag:   tg,
		})
	}
	for _, d := range own {
		seen[d.field] = struct{}{}
	}
	*out = append(*out, own...)
	for _, f := range embedded {
		et := f.Type
		if et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if err := walk(et, append(slices.Clone(prefix), f.Index[0]), m, seen, out); err != nil {
			return err
		}
	}
	return nil
}

// resolve turns a draft into a descriptor, completing its shape from the
// tag and the sample values.
func (b *Builder) resolve(record string, dr *draft, samples []reflect.Value) (member.Descriptor, error) {
	tg := dr.tag
	s, err := infer(dr.host, reflect.Value{})
	pending := errors.Is(err, errUntyped)
	if err != nil && !pending {
		return member.Descriptor{}, member.Mappingf(dr.name, "%v", err)
	}
	for _, v := range samples {
		sv, err := infer(dr.host, v)
		if err != nil {
			if errors.Is(err, errUntyped) {
				continue
			}
			return member.Descriptor{}, member.Mappingf(dr.name, "%v", err)
		}
		if pending {
			s, pending = sv, false
			continue
		}
		s.merge(sv)
	}
	if pending {
		return member.Descriptor{}, member.Mappingf(dr.name, "cannot infer the type of %v without a non-nil sample", dr.host)
	}

	if tg.enum != "" {
		e, ok := b.enums.Lookup(tg.enum)
		if !ok {
			return member.Descriptor{}, member.Mappingf(dr.name, "enumeration %q is not registered", tg.enum)
		}
		s.typ, s.enum = member.TypeEnum, e
	}
	if len(tg.dims) > 0 {
		if len(tg.dims) != len(s.dims) {
			return member.Descriptor{}, member.Mappingf(dr.name, "dims=%s does not match the rank %d of %v", FormatDims(tg.dims), len(s.dims), dr.host)
		}
		s.dims = slices.Clone(tg.dims)
	}
	if !s.resolved() {
		if s.typ == member.TypeBitSet {
			return member.Descriptor{}, member.Mappingf(dr.name, "bitset word count cannot be inferred; declare dims= or provide samples")
		}
		return member.Descriptor{}, member.Mappingf(dr.name, "array extents %v cannot be inferred; declare dims= or provide samples", s.dims)
	}

	length, explicit := tg.length, tg.explicitLen
	if s.typ == member.TypeString && !tg.varLen && !tg.ref && length == 0 {
		if len(samples) == 0 {
			return member.Descriptor{}, member.Mappingf(dr.name, "string length cannot be inferred; declare len=, varlen or provide samples")
		}
		for _, v := range samples {
			walkStrings(v, func(str string) {
				length = max(length, len(str))
				if str == "" || bytes.IndexByte([]byte(str), 0) >= 0 {
					explicit = true
				}
			})
		}
		length = max(length, 1)
	}

	unsigned := s.unsigned || tg.unsigned
	bld := member.NewBuilder(dr.name, s.typ).
		FieldName(dr.field).
		Dims(s.dims...).
		Length(length).
		Enum(s.enum).
		Unsigned(unsigned).
		VariableLength(tg.varLen).
		ExplicitLength(explicit).
		Reference(tg.ref).
		Variant(tg.variant).
		Offset(tg.offset)
	if tg.size != 0 {
		if !s.typ.IsInteger() {
			return member.Descriptor{}, member.Mappingf(dr.name, "size=%d on %s member", tg.size, s.typ)
		}
		bld.Storage(member.StorageType{Class: member.ClassInteger, Size: tg.size, Signed: !unsigned, Dims: s.dims})
	}
	if v, ok := b.variants.Get(record, dr.name); ok {
		bld.Variant(v)
	}
	d, err := bld.Build()
	if err != nil {
		return member.Descriptor{}, err
	}
	return d, nil
}

// String returns a compact description of the schema.
func (s *Schema) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s{", s.Name)
	for i, d := range s.Members {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(d.String())
	}
	buf.WriteByte('}')
	return buf.String()
}
