package strategy

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compound/member"
)

func TestBitSet(t *testing.T) {
	c := compile(t, member.NewBuilder("bits", member.TypeBitSet).Dims(2).MustBuild(), Env{})
	assert.Equal(t, 16, c.Size())
	assert.Equal(t, "bitfield[2]", c.Storage().String())

	bs := bitset.New(128).Set(0).Set(3).Set(64).Set(127)
	buf := put(t, c, bs)
	assert.Equal(t, byte(0x09), buf[0])
	assert.Equal(t, byte(0x01), buf[8])
	assert.Equal(t, byte(0x80), buf[15])

	t.Run("default decode", func(t *testing.T) {
		got, ok := getAny(t, c, buf, nil).(*bitset.BitSet)
		require.True(t, ok)
		assert.True(t, bs.Equal(got))
	})

	t.Run("roaring", func(t *testing.T) {
		rb := roaring.BitmapOf(0, 3, 64, 127)
		assert.Equal(t, buf, put(t, c, rb))
		got := get(t, c, buf, (*roaring.Bitmap)(nil), nil).(*roaring.Bitmap)
		assert.True(t, rb.Equals(got))
	})

	t.Run("words", func(t *testing.T) {
		assert.Equal(t, buf, put(t, c, bs.Words()))
		assert.Equal(t, bs.Words(), get(t, c, buf, []uint64(nil), nil))
		assert.Equal(t, [2]uint64{9, 1<<63 | 1}, get(t, c, buf, [2]uint64{}, nil))
	})

	t.Run("value bitset", func(t *testing.T) {
		got := get(t, c, buf, bitset.BitSet{}, nil).(bitset.BitSet)
		assert.True(t, got.Test(127))
	})

	t.Run("short set", func(t *testing.T) {
		buf := put(t, c, bitset.New(8).Set(1))
		assert.Equal(t, []uint64{2, 0}, get(t, c, buf, []uint64(nil), nil))
	})

	t.Run("nil set", func(t *testing.T) {
		assert.Equal(t, make([]byte, 16), put(t, c, (*bitset.BitSet)(nil)))
	})

	t.Run("too many words", func(t *testing.T) {
		err := c.Put(make([]byte, 16), reflect.ValueOf(roaring.BitmapOf(200)))
		var dm *member.DimensionMismatchError
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 4, dm.Actual)
	})

	t.Run("sparse high bit", func(t *testing.T) {
		err := c.Put(make([]byte, 16), reflect.ValueOf(roaring.BitmapOf(1, 4_000_000_000)))
		var dm *member.DimensionMismatchError
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 4_000_000_000/64+1, dm.Actual)
	})

	t.Run("unsupported host value", func(t *testing.T) {
		err := c.Put(make([]byte, 16), reflect.ValueOf("bits"))
		assert.True(t, errors.Is(err, member.ErrInvalidValue))
	})
}

type pathResolver map[string]member.Reference

func (r pathResolver) Resolve(path string) (member.Reference, error) {
	ref, ok := r[path]
	if !ok {
		return 0, fmt.Errorf("no object at %q", path)
	}
	return ref, nil
}

func (r pathResolver) Path(ref member.Reference) (string, error) {
	for p, x := range r {
		if x == ref {
			return p, nil
		}
	}
	return "", fmt.Errorf("dangling %s", ref)
}

func TestReference(t *testing.T) {
	d := member.NewBuilder("r", member.TypeInt64).Reference(true).MustBuild()

	t.Run("handles", func(t *testing.T) {
		c := compile(t, d, Env{})
		assert.Equal(t, member.ClassReference, c.Storage().Class)
		buf := put(t, c, member.Reference(0xABCD))
		assert.Equal(t, member.Reference(0xABCD), getAny(t, c, buf, nil))
		assert.Equal(t, uint64(0xABCD), get(t, c, buf, uint64(0), nil))

		err := c.Put(buf, reflect.ValueOf("/a"))
		assert.True(t, errors.Is(err, member.ErrInvalidValue))
	})

	t.Run("paths", func(t *testing.T) {
		c := compile(t, d, Env{Resolver: pathResolver{"/groups/a": 42}})
		buf := put(t, c, "/groups/a")
		assert.Equal(t, member.Reference(42), getAny(t, c, buf, nil))
		assert.Equal(t, "/groups/a", get(t, c, buf, "", nil))

		err := c.Put(buf, reflect.ValueOf("/missing"))
		assert.True(t, errors.Is(err, member.ErrInvalidValue))
	})
}
