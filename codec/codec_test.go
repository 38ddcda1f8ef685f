package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compound/member"
	"github.com/hupe1980/compound/schema"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestLayoutJSONInterchange(t *testing.T) {
	l := rowRecord(t).Layout()

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var got schema.Layout
				require.NoError(t, dec.Unmarshal(MustEncodeLayout(enc, l), &got))
				assert.True(t, got.Equal(l))
				assert.Equal(t, l.String(), got.String())
			})
		}
	}

	b, err := GoJSON{}.Append([]byte("x"), member.VariantDurationHours)
	require.NoError(t, err)
	assert.Equal(t, `x"hours"`, string(b))

	assert.NotEmpty(t, MustEncodeLayout(nil, l))
}

func TestDecodeLayout(t *testing.T) {
	l := rowRecord(t).Layout()

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			got, err := DecodeLayout(c, MustEncodeLayout(c, l))
			require.NoError(t, err)
			assert.True(t, got.Equal(l))

			_, err = DecodeLayout(c, []byte(`{"name":"x","size":4,"members":[],"sise":8}`))
			assert.Error(t, err)

			_, err = DecodeLayout(c, []byte(`{"name":"x","size":2,"members":[{"name":"a","offset":0,"storage":{"class":"integer","size":4,"signed":true}}]}`))
			assert.True(t, errors.Is(err, member.ErrMapping))
		})
	}

	bad := l
	bad.Size = 1
	_, err := EncodeLayout(nil, bad)
	assert.True(t, errors.Is(err, member.ErrMapping))
}

func TestEncodeStrings(t *testing.T) {
	t.Run("realized width", func(t *testing.T) {
		b, err := EncodeStrings([]string{"a", "bb", "ccc"}, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, b.Width)
		assert.Equal(t, 3, b.Count)
		assert.Nil(t, b.Lengths)
		assert.Equal(t, []byte("a\x00\x00bb\x00ccc"), b.Data)
		assert.Equal(t, []string{"a", "bb", "ccc"}, b.Strings())
		assert.Equal(t, member.StorageType{Class: member.ClassString, Size: 3, Dims: []int{3}}, b.Storage())
	})

	t.Run("empty element records lengths", func(t *testing.T) {
		b, err := EncodeStrings([]string{"a", "", "ccc"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 0, 3}, b.Lengths)
		assert.Equal(t, []string{"a", "", "ccc"}, b.Strings())
		assert.True(t, b.Storage().ExplicitLength)
	})

	t.Run("zero byte records lengths", func(t *testing.T) {
		b, err := EncodeStrings([]string{"a\x00b"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint32{3}, b.Lengths)
		assert.Equal(t, "a\x00b", b.At(0))
	})

	t.Run("declared width truncates at rune boundary", func(t *testing.T) {
		b, err := EncodeStrings([]string{"héllo", "ok"}, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"h", "ok"}, b.Strings())
	})

	t.Run("all empty", func(t *testing.T) {
		b, err := EncodeStrings([]string{""}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, b.Width)
		assert.Equal(t, []string{""}, b.Strings())
	})

	_, err := EncodeStrings(nil, -1)
	assert.Error(t, err)
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	for b.Loop() {
		if _, err := c.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLayoutCodec(b *testing.B) {
	l := rowRecord(b).Layout()
	data := MustEncodeLayout(JSON{}, l)

	b.Run("marshal/stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, l) })
	b.Run("marshal/go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, l) })
	b.Run("unmarshal/stdlib", func(b *testing.B) { benchmarkCodecUnmarshal[schema.Layout](b, JSON{}, data) })
	b.Run("unmarshal/go-json", func(b *testing.B) { benchmarkCodecUnmarshal[schema.Layout](b, GoJSON{}, data) })
}
