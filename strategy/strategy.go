package strategy

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/hupe1980/compound/access"
	"github.com/hupe1980/compound/member"
)

// Codec is the compiled value transform for one member slot.
//
// Put and Get receive exactly Size() bytes. Get receives a settable
// destination; an empty interface destination asks for the canonical Go
// value of the member.
type Codec interface {
	Size() int
	Storage() member.StorageType
	Put(dst []byte, v reflect.Value) error
	Get(src []byte, dst reflect.Value, ro *ReadOptions) error
}

// Strategy maps a member's logical type to its storage encoding.
type Strategy interface {
	// Name identifies the strategy in logs and layouts.
	Name() string
	// CanHandle reports whether the strategy encodes d. ext is the declared
	// external storage type, or nil.
	CanHandle(d member.Descriptor, ext *member.StorageType) bool
	// NewCodec compiles the codec for d.
	NewCodec(d member.Descriptor, ext *member.StorageType, env Env) (Codec, error)
}

// VarLenStore is the storage engine's variable-length mechanism. Put stores
// a payload and returns the 8-byte handle written into the record; Get
// returns the payload for a handle.
type VarLenStore interface {
	Put(b []byte) (uint64, error)
	Get(handle uint64) ([]byte, error)
}

// ReferenceResolver translates between reference handles and the paths they
// denote in the storage engine.
type ReferenceResolver interface {
	Resolve(path string) (member.Reference, error)
	Path(ref member.Reference) (string, error)
}

// Env carries the collaborators a strategy may need to build a codec.
type Env struct {
	VarLen   VarLenStore
	Resolver ReferenceResolver
	Bindings *access.Bindings
}

// ReadOptions select the decoded shape of members whose canonical Go value
// is ambiguous. The stored bytes never depend on them.
type ReadOptions struct {
	// EnumAs selects the shape of enumeration members decoded into untyped
	// destinations.
	EnumAs member.EnumAs
	// DurationUnit converts decoded durations to this unit. Zero keeps the
	// unit of the member's variant.
	DurationUnit member.TimeUnit
}

var defaultReadOptions = &ReadOptions{}

func readOpts(ro *ReadOptions) *ReadOptions {
	if ro == nil {
		return defaultReadOptions
	}
	return ro
}

// Registry is an ordered list of strategies. The first strategy that can
// handle a descriptor wins. A Registry is immutable.
type Registry struct {
	strategies []Strategy
}

// NewRegistry returns a registry consulting strategies in order.
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: slices.Clone(strategies)}
}

// Default returns the built-in strategies in priority order: reference,
// bitset, duration, timestamp, enum, string, bool, float, integer.
func Default() *Registry {
	return NewRegistry(
		Reference{},
		BitSet{},
		Duration{},
		Timestamp{},
		Enum{},
		String{},
		Bool{},
		Float{},
		Integer{},
	)
}

// With returns a registry that consults s before the strategies of r.
func (r *Registry) With(s ...Strategy) *Registry {
	out := make([]Strategy, 0, len(s)+len(r.strategies))
	out = append(out, s...)
	out = append(out, r.strategies...)
	return &Registry{strategies: out}
}

// Strategies returns the strategies in priority order.
func (r *Registry) Strategies() []Strategy {
	return slices.Clone(r.strategies)
}

// Lookup returns the first strategy that can handle d.
func (r *Registry) Lookup(d member.Descriptor, ext *member.StorageType) (Strategy, bool) {
	for _, s := range r.strategies {
		if s.CanHandle(d, ext) {
			return s, true
		}
	}
	return nil, false
}

// Compile resolves the strategy for d and builds its value codec. The
// descriptor's declared storage is used when ext is nil.
func (r *Registry) Compile(d member.Descriptor, ext *member.StorageType, env Env) (Codec, Strategy, error) {
	if ext == nil {
		if st, ok := d.Storage(); ok {
			ext = &st
		}
	}
	s, ok := r.Lookup(d, ext)
	if !ok {
		return nil, nil, member.Mappingf(d.Name(), "no strategy handles %s", d)
	}
	c, err := s.NewCodec(d, ext, env)
	if err != nil {
		return nil, nil, err
	}
	return c, s, nil
}

// Resolve compiles the member codec for d at byte offset within a record
// whose members are reached through pattern p. hostType is the struct type
// for the Field pattern; index is the member's declaration position.
func (r *Registry) Resolve(p access.Pattern, hostType reflect.Type, d member.Descriptor, index, offset int, env Env) (*MemberCodec, error) {
	if offset < 0 {
		return nil, member.Mappingf(d.Name(), "negative offset %d", offset)
	}
	c, s, err := r.Compile(d, nil, env)
	if err != nil {
		return nil, err
	}
	acc, err := access.New(p, hostType, d, index, env.Bindings)
	if err != nil {
		return nil, err
	}
	return &MemberCodec{
		desc:     d,
		offset:   offset,
		codec:    c,
		acc:      acc,
		pattern:  p,
		strategy: s.Name(),
	}, nil
}

// MemberCodec binds a compiled value codec to its slot in the record buffer
// and to the accessor that reaches the member in a host value. It is
// immutable and safe for concurrent use.
type MemberCodec struct {
	desc     member.Descriptor
	offset   int
	codec    Codec
	acc      access.Accessor
	pattern  access.Pattern
	strategy string
}

// Descriptor returns the member descriptor.
func (m *MemberCodec) Descriptor() member.Descriptor { return m.desc }

// Name returns the member name.
func (m *MemberCodec) Name() string { return m.desc.Name() }

// Offset returns the byte offset of the member within the record.
func (m *MemberCodec) Offset() int { return m.offset }

// Size returns the byte size of the member slot.
func (m *MemberCodec) Size() int { return m.codec.Size() }

// End returns Offset()+Size().
func (m *MemberCodec) End() int { return m.offset + m.codec.Size() }

// Storage returns the storage type handed to the storage engine.
func (m *MemberCodec) Storage() member.StorageType { return m.codec.Storage() }

// Pattern returns the access pattern the codec was compiled for.
func (m *MemberCodec) Pattern() access.Pattern { return m.pattern }

// Strategy returns the name of the strategy that compiled the codec.
func (m *MemberCodec) Strategy() string { return m.strategy }

// Codec returns the compiled value codec.
func (m *MemberCodec) Codec() Codec { return m.codec }

// Encode reads the member from rec and writes it into its slot of buf, the
// whole record buffer.
func (m *MemberCodec) Encode(buf []byte, rec reflect.Value) error {
	slot, err := m.slot(buf)
	if err != nil {
		return err
	}
	v, err := m.acc.Load(rec)
	if err != nil {
		return err
	}
	return m.codec.Put(slot, v)
}

// Decode reads the member's slot of buf and stores the value into rec.
func (m *MemberCodec) Decode(buf []byte, rec reflect.Value, ro *ReadOptions) error {
	slot, err := m.slot(buf)
	if err != nil {
		return err
	}
	return m.acc.Store(rec, func(dst reflect.Value) error {
		return m.codec.Get(slot, dst, ro)
	})
}

func (m *MemberCodec) slot(buf []byte) ([]byte, error) {
	end := m.End()
	if end > len(buf) {
		return nil, member.Valuef(m.desc.Name(), "buffer of %d bytes ends before member slot [%d,%d)", len(buf), m.offset, end)
	}
	return buf[m.offset:end:end], nil
}

// String returns a description such as "label@4:string(8)".
func (m *MemberCodec) String() string {
	return fmt.Sprintf("%s@%d:%s", m.desc.Name(), m.offset, m.codec.Storage())
}
