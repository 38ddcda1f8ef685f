package strategy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compound/internal/varheap"
	"github.com/hupe1980/compound/member"
)

func TestFixedString(t *testing.T) {
	c := compile(t, member.NewBuilder("s", member.TypeString).Length(8).MustBuild(), Env{})
	assert.Equal(t, 8, c.Size())
	assert.Equal(t, member.StorageType{Class: member.ClassString, Size: 8}, c.Storage())

	buf := put(t, c, "hello")
	assert.Equal(t, []byte("hello\x00\x00\x00"), buf)
	assert.Equal(t, "hello", getAny(t, c, buf, nil))
	assert.Equal(t, []byte("hello"), get(t, c, buf, []byte(nil), nil))

	t.Run("exact fit", func(t *testing.T) {
		buf := put(t, c, "abcdefgh")
		assert.Equal(t, "abcdefgh", getAny(t, c, buf, nil))
	})

	t.Run("truncates at rune boundary", func(t *testing.T) {
		short := compile(t, member.NewBuilder("s", member.TypeString).Length(2).MustBuild(), Env{})
		buf := put(t, short, "héllo")
		assert.Equal(t, []byte{'h', 0}, buf)
	})

	t.Run("overwrites previous contents", func(t *testing.T) {
		buf := []byte("zzzzzzzz")
		require.NoError(t, c.Put(buf, reflect.ValueOf("ab")))
		assert.Equal(t, []byte("ab\x00\x00\x00\x00\x00\x00"), buf)
	})

	t.Run("rejects non-strings", func(t *testing.T) {
		err := c.Put(make([]byte, 8), reflect.ValueOf(3))
		assert.True(t, errors.Is(err, member.ErrInvalidValue))
	})
}

func TestExplicitLengthString(t *testing.T) {
	c := compile(t, member.NewBuilder("s", member.TypeString).Length(4).ExplicitLength(true).MustBuild(), Env{})
	assert.Equal(t, 8, c.Size())
	assert.True(t, c.Storage().ExplicitLength)

	for _, s := range []string{"", "a\x00b", "abcd"} {
		buf := put(t, c, s)
		assert.Equal(t, s, getAny(t, c, buf, nil))
	}

	buf := put(t, c, "a\x00b")
	assert.Equal(t, []byte{3, 0, 0, 0, 'a', 0, 'b', 0}, buf)

	t.Run("corrupt length", func(t *testing.T) {
		err := c.Get([]byte{9, 0, 0, 0, 0, 0, 0, 0}, reflect.ValueOf(new(string)).Elem(), nil)
		assert.True(t, errors.Is(err, member.ErrInvalidValue))
	})
}

func TestStringArray(t *testing.T) {
	c := compile(t, member.NewBuilder("names", member.TypeString).Length(3).Dims(3).MustBuild(), Env{})
	in := []string{"a", "bb", "ccc"}
	buf := put(t, c, in)
	assert.Equal(t, []byte("a\x00\x00bb\x00ccc"), buf)
	assert.Equal(t, in, getAny(t, c, buf, nil))
}

func TestVariableLengthString(t *testing.T) {
	d := member.NewBuilder("s", member.TypeString).VariableLength(true).MustBuild()

	_, _, err := Default().Compile(d, nil, Env{})
	assert.True(t, errors.Is(err, member.ErrMapping))

	heap := varheap.New()
	c := compile(t, d, Env{VarLen: heap})
	assert.Equal(t, HandleSize, c.Size())
	assert.True(t, c.Storage().VariableLength)

	long := "a string much longer than any fixed slot"
	buf := put(t, c, long)
	assert.Equal(t, 1, heap.Len())
	assert.Equal(t, long, getAny(t, c, buf, nil))

	assert.Equal(t, "", getAny(t, c, put(t, c, ""), nil))

	err = c.Get([]byte{99, 0, 0, 0, 0, 0, 0, 0}, reflect.ValueOf(new(string)).Elem(), nil)
	assert.ErrorIs(t, err, varheap.ErrUnknownHandle)
	assert.True(t, errors.Is(err, member.ErrInvalidValue))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, []byte("ab"), Truncate([]byte("abc"), 2))
	assert.Equal(t, []byte("abc"), Truncate([]byte("abc"), 5))
	assert.Equal(t, []byte(""), Truncate([]byte("é"), 1))
	assert.Equal(t, []byte("aé"), Truncate([]byte("aéb"), 3))
}

type color uint8

var colorType = member.MustEnumType("Color", "RED", "GREEN", "BLUE")

func (color) EnumType() *member.EnumType { return colorType }
func (c color) Ordinal() int              { return int(c) }

func TestEnum(t *testing.T) {
	c := compile(t, member.NewBuilder("c", member.TypeEnum).Enum(colorType).MustBuild(), Env{})
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, "enum<Color>", c.Storage().String())

	t.Run("encode forms", func(t *testing.T) {
		for _, v := range []any{2, "BLUE", member.EnumValue{Type: colorType, Ordinal: 2}, color(2)} {
			assert.Equal(t, []byte{2}, put(t, c, v), "%T", v)
		}
	})

	t.Run("decode shapes", func(t *testing.T) {
		buf := []byte{1}
		assert.Equal(t, member.EnumValue{Type: colorType, Ordinal: 1}, getAny(t, c, buf, nil))
		assert.Equal(t, 1, getAny(t, c, buf, &ReadOptions{EnumAs: member.EnumAsOrdinal}))
		assert.Equal(t, "GREEN", getAny(t, c, buf, &ReadOptions{EnumAs: member.EnumAsName}))
		assert.Equal(t, color(1), get(t, c, buf, color(0), nil))
		assert.Equal(t, "GREEN", get(t, c, buf, "", nil))
	})

	t.Run("errors", func(t *testing.T) {
		for _, v := range []any{"PURPLE", 3, -1, member.EnumValue{Type: member.MustEnumType("Other", "X"), Ordinal: 0}} {
			err := c.Put(make([]byte, 1), reflect.ValueOf(v))
			assert.True(t, errors.Is(err, member.ErrInvalidValue), "%v", v)
		}
		err := c.Get([]byte{7}, reflect.ValueOf(new(any)).Elem(), nil)
		assert.True(t, errors.Is(err, member.ErrInvalidValue))
	})

	t.Run("wide enumeration", func(t *testing.T) {
		values := make([]string, 300)
		for i := range values {
			values[i] = "v" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		}
		wide := member.MustEnumType("Wide", values...)
		c := compile(t, member.NewBuilder("w", member.TypeEnum).Enum(wide).MustBuild(), Env{})
		assert.Equal(t, 2, c.Size())
		buf := put(t, c, 299)
		assert.Equal(t, []byte{0x2B, 0x01}, buf)
		assert.Equal(t, values[299], getAny(t, c, buf, &ReadOptions{EnumAs: member.EnumAsName}))
	})

	t.Run("storage enumeration disagrees", func(t *testing.T) {
		d := member.NewBuilder("c", member.TypeEnum).Enum(colorType).
			Storage(member.StorageType{Class: member.ClassEnum, Size: 1, Enum: member.MustEnumType("Color", "RED")}).
			MustBuild()
		_, _, err := Default().Compile(d, nil, Env{})
		assert.True(t, errors.Is(err, member.ErrMapping))
	})
}
