package compound_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compound"
	"github.com/hupe1980/compound/access"
	"github.com/hupe1980/compound/codec"
	"github.com/hupe1980/compound/member"
	"github.com/hupe1980/compound/schema"
)

var flagsType = member.MustEnumType("Flags", "NONE", "READ", "WRITE")

type rowV1 struct {
	_     schema.AnnotatedOnly
	ID    uint32 `compound:"id"`
	Label string `compound:"label,len=8"`
	Flags string `compound:"flags,enum=Flags"`
}

type rowV2 struct {
	_     schema.AnnotatedOnly
	ID    uint32 `compound:"id"`
	Label string `compound:"label,len=8"`
	Flags string `compound:"flags,enum=Flags"`
	Extra int16  `compound:"extra"`
}

func newRegistry(opts ...compound.Option) *compound.Registry {
	opts = append([]compound.Option{compound.WithEnums(member.NewEnumRegistry(flagsType))}, opts...)
	return compound.NewRegistry(opts...)
}

func TestRegistryScenario(t *testing.T) {
	ctx := context.Background()
	r := newRegistry()

	rec, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
	require.NoError(t, err)
	assert.Equal(t, 13, rec.Size())

	buf, err := rec.Encode(rowV1{ID: 42, Label: "hi", Flags: "READ"})
	require.NoError(t, err)
	assert.Equal(t, []byte{42, 0, 0, 0, 'h', 'i', 0, 0, 0, 0, 0, 0, 1}, buf)

	var out rowV1
	require.NoError(t, rec.Decode(buf, &out))
	assert.Equal(t, rowV1{ID: 42, Label: "hi", Flags: "READ"}, out)
}

func TestRegistryReuse(t *testing.T) {
	ctx := context.Background()
	metrics := &compound.BasicMetricsCollector{}
	r := newRegistry(compound.WithMetricsCollector(metrics))

	a, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
	require.NoError(t, err)
	b, err := compound.For[*rowV1](ctx, r, "row", compound.Strict)
	require.NoError(t, err)
	assert.Same(t, a, b)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, []string{"row"}, r.Keys())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryConcurrentFirstBuild(t *testing.T) {
	ctx := context.Background()
	metrics := &compound.BasicMetricsCollector{}
	r := newRegistry(compound.WithMetricsCollector(metrics))

	const n = 32
	recs := make([]*codec.Record, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
			assert.NoError(t, err)
			recs[i] = rec
		}()
	}
	wg.Wait()

	for _, rec := range recs {
		assert.Same(t, recs[0], rec)
	}
	assert.Equal(t, int64(1), metrics.GetStats().BuildCount)
}

func TestRegistryPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("strict conflict", func(t *testing.T) {
		metrics := &compound.BasicMetricsCollector{}
		r := newRegistry(compound.WithMetricsCollector(metrics))
		_, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
		require.NoError(t, err)

		_, err = compound.For[rowV2](ctx, r, "row", compound.Strict)
		require.Error(t, err)
		assert.True(t, errors.Is(err, compound.ErrIncompatible))

		var ce *compound.CompatibilityError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "row", ce.Key)
		assert.Equal(t, schema.Incompatible, ce.Relation)
		assert.Equal(t, 13, ce.Registered.Size)
		assert.Equal(t, 15, ce.Requested.Size)
		assert.Equal(t, int64(1), metrics.GetStats().Conflicts)
	})

	t.Run("replace", func(t *testing.T) {
		r := newRegistry()
		_, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
		require.NoError(t, err)

		rec, err := compound.For[rowV2](ctx, r, "row", compound.Replace)
		require.NoError(t, err)
		l, err := r.Layout("row")
		require.NoError(t, err)
		assert.True(t, l.Equal(rec.Layout()))
		assert.Equal(t, 15, l.Size)
	})

	t.Run("compatible prefix", func(t *testing.T) {
		r := newRegistry()
		full, err := compound.For[rowV2](ctx, r, "row", compound.Strict)
		require.NoError(t, err)

		_, err = compound.For[rowV1](ctx, r, "row", compound.Strict)
		var ce *compound.CompatibilityError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, schema.Prefix, ce.Relation)

		prefix, err := compound.For[rowV1](ctx, r, "row", compound.CompatiblePrefix)
		require.NoError(t, err)
		assert.Equal(t, full.Size(), prefix.Size())

		again, err := compound.For[rowV1](ctx, r, "row", compound.CompatiblePrefix)
		require.NoError(t, err)
		assert.Same(t, prefix, again)

		buf, err := full.Encode(rowV2{ID: 1, Label: "x", Flags: "WRITE", Extra: -2})
		require.NoError(t, err)
		var out rowV1
		require.NoError(t, prefix.Decode(buf, &out))
		assert.Equal(t, rowV1{ID: 1, Label: "x", Flags: "WRITE"}, out)

		l, _ := r.Layout("row")
		assert.True(t, l.Equal(full.Layout()))
	})

	t.Run("compatible prefix rejects extension", func(t *testing.T) {
		r := newRegistry()
		_, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
		require.NoError(t, err)
		_, err = compound.For[rowV2](ctx, r, "row", compound.CompatiblePrefix)
		assert.True(t, errors.Is(err, compound.ErrIncompatible))
	})

	t.Run("invalid policy", func(t *testing.T) {
		_, err := compound.For[rowV1](ctx, newRegistry(), "row", compound.Policy(9))
		var ip *compound.ErrInvalidPolicy
		assert.ErrorAs(t, err, &ip)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := compound.For[rowV1](cctx, newRegistry(), "row", compound.Strict)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRegistryLayouts(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(compound.WithLayoutCodec(codec.JSON{}))
	rec, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
	require.NoError(t, err)

	data, err := r.ExportLayout("row")
	require.NoError(t, err)

	// Same layout reached through map access.
	view, err := r.ImportLayout(ctx, data, compound.Strict)
	require.NoError(t, err)
	assert.Equal(t, access.Map, view.Pattern())
	assert.True(t, view.Layout().Equal(rec.Layout()))
	orig, _ := r.Lookup("row")
	assert.Same(t, rec, orig)

	other := compound.NewRegistry()
	imported, err := other.ImportLayout(ctx, data, compound.Strict)
	require.NoError(t, err)
	buf, err := rec.Encode(rowV1{ID: 3, Label: "abc", Flags: "NONE"})
	require.NoError(t, err)
	m, err := imported.DecodeNew(buf, codec.EnumAs(member.EnumAsName))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": uint32(3), "label": "abc", "flags": "NONE"}, m)

	_, err = r.ExportLayout("missing")
	assert.ErrorIs(t, err, compound.ErrNotFound)

	r.Forget("row")
	_, ok := r.Lookup("row")
	assert.False(t, ok)
}

func TestRegistryEncodeDecode(t *testing.T) {
	ctx := context.Background()
	metrics := &compound.BasicMetricsCollector{}
	r := newRegistry(compound.WithMetricsCollector(metrics), compound.WithParallelism(4))

	_, err := r.ForMap(ctx, "kv", map[string]any{"k": int32(0), "v": 1.5}, compound.Strict)
	require.NoError(t, err)

	buf, err := r.Encode(ctx, "kv", map[string]any{"k": 7, "v": 2.5})
	require.NoError(t, err)
	assert.Len(t, buf, 12)

	out := map[string]any{}
	require.NoError(t, r.Decode(ctx, "kv", buf, out))
	assert.Equal(t, map[string]any{"k": int32(7), "v": 2.5}, out)

	batch, err := r.EncodeBatch(ctx, "kv", []map[string]any{{"k": 1, "v": 0.0}, {"k": 2, "v": 0.0}})
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, r.DecodeBatch(ctx, "kv", batch, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int32(2), rows[1]["k"])

	_, err = r.Encode(ctx, "kv", map[string]any{"k": 1})
	assert.ErrorIs(t, err, compound.ErrAccess)

	_, err = r.Encode(ctx, "nope", nil)
	assert.ErrorIs(t, err, compound.ErrNotFound)
	assert.ErrorIs(t, r.Decode(ctx, "nope", nil, nil), compound.ErrNotFound)

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.EncodeCount)
	assert.Equal(t, int64(3), stats.EncodeRecords)
	assert.Equal(t, int64(1), stats.EncodeErrors)
	assert.Equal(t, int64(2), stats.DecodeCount)
	assert.Equal(t, int64(3), stats.DecodeRecords)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := compound.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.Background()
	r := newRegistry(compound.WithLogger(logger))
	_, err := compound.For[rowV1](ctx, r, "row", compound.Strict)
	require.NoError(t, err)
	_, err = compound.For[rowV2](ctx, r, "row", compound.Strict)
	require.Error(t, err)
	_, err = compound.For[rowV2](ctx, r, "row", compound.Replace)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "record codec built")
	assert.Contains(t, out, "layout conflicts with registered layout")
	assert.Contains(t, out, "policy=strict")
	assert.Contains(t, out, "registered layout replaced")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	r := newRegistry(compound.WithLogger(compound.NewJSONLogger(&buf, slog.LevelDebug)))

	_, err := compound.For[rowV1](context.Background(), r, "row", compound.Strict)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"record codec built"`)
	assert.Contains(t, buf.String(), `"key":"row"`)

	buf.Reset()
	quiet := newRegistry(compound.WithLogger(compound.NewTextLogger(&buf, slog.LevelError)))
	_, err = compound.For[rowV1](context.Background(), quiet, "row", compound.Strict)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "strict", compound.Strict.String())
	assert.Equal(t, "replace", compound.Replace.String())
	assert.Equal(t, "compatible-prefix", compound.CompatiblePrefix.String())
	assert.Equal(t, "Unknown", compound.Policy(7).String())
}
