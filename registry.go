package compound

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/compound/access"
	"github.com/hupe1980/compound/codec"
	"github.com/hupe1980/compound/schema"
)

// Policy decides what a resolution does when the requested layout differs
// from the layout registered under the same key. Every resolution names its
// policy explicitly.
type Policy uint8

const (
	// Strict rejects any requested layout that is not equal to the
	// registered one.
	Strict Policy = iota
	// Replace makes the requested layout authoritative.
	Replace
	// CompatiblePrefix keeps the registered layout and accepts a requested
	// layout whose members are a leading subset of it. The returned codec
	// reads and writes registered-size records.
	CompatiblePrefix
)

// String returns the string representation of the Policy.
func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Replace:
		return "replace"
	case CompatiblePrefix:
		return "compatible-prefix"
	default:
		return "Unknown"
	}
}

func (p Policy) validate() error {
	if p > CompatiblePrefix {
		return &ErrInvalidPolicy{Policy: p}
	}
	return nil
}

type view struct {
	key     string
	pattern access.Pattern
	host    reflect.Type
}

// Registry memoizes record codecs per schema key. The first build of a Go
// type under a key is performed once even when requested concurrently;
// later requests for a different layout under the same key are settled by
// the caller's Policy.
//
// A Registry is safe for concurrent use.
type Registry struct {
	opts options

	buildMu sync.Mutex // guards builder
	builder *schema.Builder

	mu      sync.RWMutex
	codecs  map[string]*codec.Record
	derived map[view]*codec.Record

	group singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry(optFns ...Option) *Registry {
	o := applyOptions(optFns)
	return &Registry{
		opts:    o,
		builder: schema.NewBuilder(o.enums, o.variants),
		codecs:  make(map[string]*codec.Record),
		derived: make(map[view]*codec.Record),
	}
}

// For resolves the record codec of T under name. An empty name defaults to
// the type name.
func For[T any](ctx context.Context, r *Registry, name string, policy Policy) (*codec.Record, error) {
	return r.ForType(ctx, name, reflect.TypeFor[T](), policy)
}

// ForType resolves the record codec of struct type t under name.
func (r *Registry) ForType(ctx context.Context, name string, t reflect.Type, policy Policy) (*codec.Record, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	key := name
	if key == "" && t != nil {
		key = t.Name()
	}
	if rec, ok := r.cached(key, t); ok {
		r.opts.metricsCollector.RecordCacheHit(key)
		return rec, nil
	}

	v, err, _ := r.group.Do(flightKey(key, t), func() (any, error) {
		if rec, ok := r.cached(key, t); ok {
			r.opts.metricsCollector.RecordCacheHit(key)
			return rec, nil
		}
		s, err := r.schema(func(b *schema.Builder) (*schema.Schema, error) {
			return b.FromType(key, t)
		})
		if err != nil {
			r.opts.logger.LogBuild(ctx, key, schema.Layout{}, err)
			return nil, err
		}
		return r.resolve(ctx, key, s, policy)
	})
	if err != nil {
		return nil, err
	}
	return v.(*codec.Record), nil
}

// ForSamples resolves the record codec of the struct type shared by
// samples, sized from the sample values.
func (r *Registry) ForSamples(ctx context.Context, name string, policy Policy, samples ...any) (*codec.Record, error) {
	return r.resolveWith(ctx, name, policy, func(b *schema.Builder) (*schema.Schema, error) {
		return b.FromSamples(name, samples...)
	})
}

// ForMap resolves a map-access record codec with one member per entry of m.
func (r *Registry) ForMap(ctx context.Context, name string, m map[string]any, policy Policy, order ...string) (*codec.Record, error) {
	return r.resolveWith(ctx, name, policy, func(b *schema.Builder) (*schema.Schema, error) {
		return b.FromMap(name, m, order...)
	})
}

// ForLayout resolves the record codec of a committed layout under its name.
func (r *Registry) ForLayout(ctx context.Context, l schema.Layout, policy Policy) (*codec.Record, error) {
	return r.resolveWith(ctx, l.Name, policy, func(b *schema.Builder) (*schema.Schema, error) {
		return b.FromLayout(l)
	})
}

// Register resolves the record codec of a prepared schema under key.
func (r *Registry) Register(ctx context.Context, key string, s *schema.Schema, policy Policy) (*codec.Record, error) {
	return r.resolveWith(ctx, key, policy, func(*schema.Builder) (*schema.Schema, error) {
		return s, nil
	})
}

func (r *Registry) resolveWith(ctx context.Context, key string, policy Policy, fn func(*schema.Builder) (*schema.Schema, error)) (*codec.Record, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := r.schema(fn)
	if err != nil {
		r.opts.logger.LogBuild(ctx, key, schema.Layout{}, err)
		return nil, err
	}
	return r.resolve(ctx, key, s, policy)
}

// schema runs fn under the builder gate.
func (r *Registry) schema(fn func(*schema.Builder) (*schema.Schema, error)) (*schema.Schema, error) {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	return fn(r.builder)
}

func (r *Registry) resolve(ctx context.Context, key string, s *schema.Schema, policy Policy) (*codec.Record, error) {
	start := time.Now()
	rec, err := codec.New(s, r.opts.codecOptions()...)
	r.opts.metricsCollector.RecordBuild(key, time.Since(start), err)
	if err != nil {
		r.opts.logger.LogBuild(ctx, key, schema.Layout{}, err)
		return nil, err
	}
	r.opts.logger.LogBuild(ctx, key, rec.Layout(), nil)
	return r.commit(ctx, key, s, rec, policy)
}

func (r *Registry) commit(ctx context.Context, key string, s *schema.Schema, rec *codec.Record, policy Policy) (*codec.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.codecs[key]
	if !ok {
		r.codecs[key] = rec
		return rec, nil
	}

	registered, requested := reg.Layout(), rec.Layout()
	rel := schema.Compare(registered, requested)
	switch {
	case rel == schema.Equal:
		r.opts.metricsCollector.RecordCacheHit(key)
		if sameHost(reg, rec) {
			return reg, nil
		}
		return r.derive(key, rec), nil
	case policy == Replace:
		r.opts.logger.LogReplace(ctx, key, registered, requested)
		r.codecs[key] = rec
		r.dropDerived(key)
		return rec, nil
	case policy == CompatiblePrefix && rel == schema.Prefix:
		prefix, err := r.widen(s, registered)
		if err != nil {
			return nil, err
		}
		r.opts.metricsCollector.RecordCacheHit(key)
		return r.derive(key, prefix), nil
	default:
		r.opts.metricsCollector.RecordConflict(key)
		r.opts.logger.LogConflict(ctx, key, policy, rel)
		return nil, &schema.CompatibilityError{Key: key, Registered: registered, Requested: requested, Relation: rel}
	}
}

// widen recompiles a prefix schema at the registered offsets and size.
func (r *Registry) widen(s *schema.Schema, registered schema.Layout) (*codec.Record, error) {
	w := *s
	w.Size = registered.Size
	w.Members = slices.Clone(s.Members)
	for i, d := range w.Members {
		pinned, err := d.ToBuilder().Offset(registered.Members[i].Offset).Build()
		if err != nil {
			return nil, err
		}
		w.Members[i] = pinned
	}
	return codec.New(&w, r.opts.codecOptions()...)
}

func (r *Registry) derive(key string, rec *codec.Record) *codec.Record {
	v := view{key: key, pattern: rec.Pattern(), host: rec.HostType()}
	if d, ok := r.derived[v]; ok && d.Layout().Equal(rec.Layout()) {
		return d
	}
	r.derived[v] = rec
	return rec
}

func (r *Registry) dropDerived(key string) {
	for v := range r.derived {
		if v.key == key {
			delete(r.derived, v)
		}
	}
}

func (r *Registry) cached(key string, t reflect.Type) (*codec.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.codecs[key]; ok && rec.Pattern() == access.Field && rec.HostType() == t {
		return rec, true
	}
	rec, ok := r.derived[view{key: key, pattern: access.Field, host: t}]
	return rec, ok
}

// Lookup returns the codec registered under key.
func (r *Registry) Lookup(key string) (*codec.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.codecs[key]
	return rec, ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codecs)
}

// Forget removes key and every codec derived from it.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codecs, key)
	r.dropDerived(key)
}

// Layout returns the registered layout of key.
func (r *Registry) Layout(key string) (schema.Layout, error) {
	rec, ok := r.Lookup(key)
	if !ok {
		return schema.Layout{}, notFound(key)
	}
	return rec.Layout(), nil
}

// ExportLayout serializes the registered layout of key with the layout
// codec.
func (r *Registry) ExportLayout(key string) ([]byte, error) {
	l, err := r.Layout(key)
	if err != nil {
		return nil, err
	}
	return codec.EncodeLayout(r.opts.layoutCodec, l)
}

// ImportLayout deserializes a layout with the layout codec and resolves it
// under its name.
func (r *Registry) ImportLayout(ctx context.Context, data []byte, policy Policy) (*codec.Record, error) {
	l, err := codec.DecodeLayout(r.opts.layoutCodec, data)
	if err != nil {
		return nil, err
	}
	return r.ForLayout(ctx, l, policy)
}

// Encode encodes v with the codec registered under key.
func (r *Registry) Encode(ctx context.Context, key string, v any) ([]byte, error) {
	rec, ok := r.Lookup(key)
	if !ok {
		return nil, notFound(key)
	}
	start := time.Now()
	buf, err := rec.Encode(v)
	r.opts.metricsCollector.RecordEncode(key, 1, time.Since(start), err)
	if err != nil {
		r.opts.logger.WithKey(key).DebugContext(ctx, "encode failed", "error", err)
	}
	return buf, err
}

// Decode decodes data into v with the codec registered under key.
func (r *Registry) Decode(ctx context.Context, key string, data []byte, v any, opts ...codec.ReadOption) error {
	rec, ok := r.Lookup(key)
	if !ok {
		return notFound(key)
	}
	start := time.Now()
	err := rec.Decode(data, v, opts...)
	r.opts.metricsCollector.RecordDecode(key, 1, time.Since(start), err)
	if err != nil {
		r.opts.logger.WithKey(key).DebugContext(ctx, "decode failed", "error", err)
	}
	return err
}

// EncodeBatch encodes the slice records with the codec registered under key.
func (r *Registry) EncodeBatch(ctx context.Context, key string, records any) ([]byte, error) {
	rec, ok := r.Lookup(key)
	if !ok {
		return nil, notFound(key)
	}
	n := 0
	if rv := reflect.ValueOf(records); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		n = rv.Len()
	}
	start := time.Now()
	buf, err := rec.EncodeBatch(records)
	r.opts.metricsCollector.RecordEncode(key, n, time.Since(start), err)
	r.opts.logger.LogBatch(ctx, "batch encode", key, n, err)
	return buf, err
}

// DecodeBatch decodes consecutive records into the slice pointed to by out
// with the codec registered under key.
func (r *Registry) DecodeBatch(ctx context.Context, key string, data []byte, out any, opts ...codec.ReadOption) error {
	rec, ok := r.Lookup(key)
	if !ok {
		return notFound(key)
	}
	n := 0
	if rec.Size() > 0 {
		n = len(data) / rec.Size()
	}
	start := time.Now()
	err := rec.DecodeBatch(data, out, opts...)
	r.opts.metricsCollector.RecordDecode(key, n, time.Since(start), err)
	r.opts.logger.LogBatch(ctx, "batch decode", key, n, err)
	return err
}

func sameHost(a, b *codec.Record) bool {
	return a.Pattern() == b.Pattern() && a.HostType() == b.HostType()
}

func flightKey(key string, t reflect.Type) string {
	if t == nil {
		return key
	}
	return key + "\x00" + t.PkgPath() + "." + t.String()
}
