package codec

import (
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/compound/access"
	"github.com/hupe1980/compound/member"
	"github.com/hupe1980/compound/schema"
	"github.com/hupe1980/compound/strategy"
)

// minParallelBatch is the smallest batch split across goroutines.
const minParallelBatch = 256

// Record converts whole host values to and from fixed-layout record
// buffers. Members occupy disjoint byte ranges; every member lies within
// Size() bytes.
//
// A Record is immutable and safe for concurrent use.
type Record struct {
	name        string
	variant     member.Variant
	size        int
	pattern     access.Pattern
	host        reflect.Type
	members     []*strategy.MemberCodec
	parallelism int
	read        strategy.ReadOptions
}

var _ Codec = (*Record)(nil)

// New compiles the record codec for s. Members without a pinned offset are
// packed in declaration order directly after their predecessor.
func New(s *schema.Schema, optFns ...Option) (*Record, error) {
	if s == nil {
		return nil, member.Mappingf("", "nil schema")
	}
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	p := access.Map
	if s.Type != nil {
		p = access.Field
	}
	if o.hasPattern {
		p = o.pattern
	}
	var host reflect.Type
	if p == access.Field {
		host = s.Type
		for host != nil && host.Kind() == reflect.Pointer {
			host = host.Elem()
		}
	}

	r := &Record{
		name:        s.Name,
		variant:     s.Variant,
		pattern:     p,
		host:        host,
		members:     make([]*strategy.MemberCodec, 0, len(s.Members)),
		parallelism: o.parallelism,
		read:        o.read,
	}

	cursor := 0
	for i, d := range s.Members {
		off := d.Offset()
		if off == member.Packed {
			off = cursor
		}
		mc, err := o.registry.Resolve(p, host, d, i, off, o.env)
		if err != nil {
			return nil, err
		}
		r.members = append(r.members, mc)
		cursor = mc.End()
		r.size = max(r.size, cursor)
	}
	if s.Size > 0 {
		if s.Size < r.size {
			return nil, member.Mappingf(s.Name, "members end at %d beyond record size %d", r.size, s.Size)
		}
		r.size = s.Size
	}
	if err := r.Layout().Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(s *schema.Schema, optFns ...Option) *Record {
	r, err := New(s, optFns...)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the record name.
func (r *Record) Name() string { return r.name }

// Variant returns the record-level type variant.
func (r *Record) Variant() member.Variant { return r.variant }

// Size returns the record byte size.
func (r *Record) Size() int { return r.size }

// Pattern returns the access pattern used to reach members.
func (r *Record) Pattern() access.Pattern { return r.pattern }

// HostType returns the struct type reached by Field access, or nil.
func (r *Record) HostType() reflect.Type { return r.host }

// Members returns the member codecs in declaration order.
func (r *Record) Members() []*strategy.MemberCodec {
	out := make([]*strategy.MemberCodec, len(r.members))
	copy(out, r.members)
	return out
}

// Member returns the codec of the named member.
func (r *Record) Member(name string) (*strategy.MemberCodec, bool) {
	for _, m := range r.members {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Layout returns the committed form of the record.
func (r *Record) Layout() schema.Layout {
	l := schema.Layout{
		Name:    r.name,
		Size:    r.size,
		Variant: r.variant,
		Members: make([]schema.MemberLayout, len(r.members)),
	}
	for i, m := range r.members {
		l.Members[i] = schema.MemberLayout{Name: m.Name(), Offset: m.Offset(), Storage: m.Storage()}
	}
	return l
}

// WithVariant returns a copy of r annotated with the record-level variant v.
func (r *Record) WithVariant(v member.Variant) *Record {
	c := *r
	c.variant = v
	return &c
}

// String returns the layout description.
func (r *Record) String() string { return r.Layout().String() }

// Encode returns the record buffer for v. On error no buffer is returned.
func (r *Record) Encode(v any) ([]byte, error) {
	buf := make([]byte, r.size)
	if err := r.EncodeTo(buf, v); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeTo writes v into the first Size() bytes of dst. Gaps between
// members are zeroed. The contents of dst are unspecified on error.
func (r *Record) EncodeTo(dst []byte, v any) error {
	if len(dst) < r.size {
		return member.Valuef(r.name, "destination of %d bytes is shorter than record size %d", len(dst), r.size)
	}
	return r.encodeValue(dst[:r.size], reflect.ValueOf(v))
}

func (r *Record) encodeValue(dst []byte, v reflect.Value) error {
	rec, err := r.source(v)
	if err != nil {
		return err
	}
	clear(dst)
	for _, m := range r.members {
		if err := m.Encode(dst, rec); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a record buffer into v: a pointer to the host struct for
// Field access, a map or pointer to map for Map access, and a pointer to a
// slice for List and Array access.
func (r *Record) Decode(data []byte, v any, opts ...ReadOption) error {
	ro := r.readOptions(opts)
	return r.decodeValue(data, reflect.ValueOf(v), &ro)
}

// DecodeNew decodes data into a freshly allocated record: *T for Field
// access, map[string]any, access.ListRecord or []any.
func (r *Record) DecodeNew(data []byte, opts ...ReadOption) (any, error) {
	rec, err := access.NewRecord(r.pattern, r.host, len(r.members))
	if err != nil {
		return nil, member.Mappingf(r.name, "%v", err)
	}
	ro := r.readOptions(opts)
	if r.pattern == access.List || r.pattern == access.Array {
		// slices are rebuilt through a pointer
		ptr := reflect.New(rec.Type())
		ptr.Elem().Set(rec)
		if err := r.decodeValue(data, ptr, &ro); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}
	if err := r.decodeValue(data, rec, &ro); err != nil {
		return nil, err
	}
	return rec.Interface(), nil
}

func (r *Record) decodeValue(data []byte, v reflect.Value, ro *strategy.ReadOptions) error {
	if len(data) < r.size {
		return member.Valuef(r.name, "buffer of %d bytes is shorter than record size %d", len(data), r.size)
	}
	rec, err := r.target(v)
	if err != nil {
		return err
	}
	data = data[:r.size]
	for _, m := range r.members {
		if err := m.Decode(data, rec, ro); err != nil {
			return err
		}
	}
	return nil
}

// EncodeBatch encodes every element of the slice records into consecutive
// records of Size() bytes.
func (r *Record) EncodeBatch(records any) ([]byte, error) {
	rv := reflect.ValueOf(records)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, r.accessErr("batch is %T, not a slice", records)
	}
	n := rv.Len()
	out := make([]byte, n*r.size)
	err := r.forEach(n, func(i int) error {
		off := i * r.size
		return r.encodeValue(out[off:off+r.size], rv.Index(i))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeBatch decodes consecutive records of data into the slice pointed to
// by out, replacing its contents.
func (r *Record) DecodeBatch(data []byte, out any, opts ...ReadOption) error {
	pv := reflect.ValueOf(out)
	if pv.Kind() != reflect.Pointer || pv.IsNil() || pv.Elem().Kind() != reflect.Slice {
		return r.accessErr("batch destination is %T, not a pointer to a slice", out)
	}
	if r.size == 0 {
		return member.Valuef(r.name, "cannot split a batch of empty records")
	}
	if len(data)%r.size != 0 {
		return member.Valuef(r.name, "batch of %d bytes is not a multiple of record size %d", len(data), r.size)
	}
	n := len(data) / r.size
	s := reflect.MakeSlice(pv.Elem().Type(), n, n)
	ro := r.readOptions(opts)
	err := r.forEach(n, func(i int) error {
		e := s.Index(i)
		target := e
		if e.Kind() == reflect.Pointer {
			e.Set(reflect.New(e.Type().Elem()))
		} else {
			target = e.Addr()
		}
		off := i * r.size
		return r.decodeValue(data[off:off+r.size], target, &ro)
	})
	if err != nil {
		return err
	}
	pv.Elem().Set(s)
	return nil
}

// forEach runs fn for 0..n-1, in parallel chunks when the batch is large
// enough. fn calls touch disjoint records.
func (r *Record) forEach(n int, fn func(i int) error) error {
	if r.parallelism <= 1 || n < minParallelBatch {
		for i := range n {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	chunk := (n + r.parallelism - 1) / r.parallelism
	var g errgroup.Group
	g.SetLimit(r.parallelism)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Marshal implements Codec.
func (r *Record) Marshal(v any) ([]byte, error) { return r.Encode(v) }

// Unmarshal implements Codec.
func (r *Record) Unmarshal(data []byte, v any) error { return r.Decode(data, v) }

func (r *Record) readOptions(opts []ReadOption) strategy.ReadOptions {
	ro := r.read
	for _, fn := range opts {
		fn(&ro)
	}
	return ro
}

// source normalizes an encode input to the value the accessors expect.
func (r *Record) source(v reflect.Value) (reflect.Value, error) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, member.Valuef(r.name, "nil record")
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, member.Valuef(r.name, "nil record")
	}

	switch r.pattern {
	case access.Field:
		if v.Type() != r.host {
			return reflect.Value{}, r.accessErr("record is %v, want %v", v.Type(), r.host)
		}
		if !v.CanAddr() {
			c := reflect.New(v.Type()).Elem()
			c.Set(v)
			v = c
		}
	case access.Map:
		if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, r.accessErr("record is %v, not a string-keyed map", v.Type())
		}
	case access.List, access.Array:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return reflect.Value{}, r.accessErr("record is %v, not a slice", v.Type())
		}
		if r.pattern == access.Array && v.Len() != len(r.members) {
			return reflect.Value{}, r.accessErr("array record holds %d values for %d members", v.Len(), len(r.members))
		}
	}
	return v, nil
}

// target normalizes a decode destination, allocating what Decode owns.
func (r *Record) target(v reflect.Value) (reflect.Value, error) {
	switch r.pattern {
	case access.Field:
		if v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem() != r.host {
			return reflect.Value{}, r.accessErr("decode needs a non-nil *%v, got %v", r.host, typeOf(v))
		}
		return v.Elem(), nil
	case access.Map:
		if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Map {
			if v.Elem().IsNil() {
				v.Elem().Set(reflect.MakeMapWithSize(v.Elem().Type(), len(r.members)))
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Map || v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, r.accessErr("decode needs a non-nil string-keyed map, got %v", typeOf(v))
		}
		return v, nil
	default:
		if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Slice {
			return reflect.Value{}, r.accessErr("decode needs a pointer to a slice, got %v", typeOf(v))
		}
		s := v.Elem()
		if s.Len() != len(r.members) {
			s.Set(reflect.MakeSlice(s.Type(), len(r.members), len(r.members)))
		}
		return s, nil
	}
}

func (r *Record) accessErr(format string, args ...any) error {
	return &member.AccessError{Member: r.name, Pattern: r.pattern.String(), Reason: fmt.Sprintf(format, args...)}
}

func typeOf(v reflect.Value) any {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type()
}
