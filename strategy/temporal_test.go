package strategy

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/compound/member"
)

func TestDuration(t *testing.T) {
	c := compile(t, member.NewBuilder("d", member.TypeDuration).MustBuild(), Env{})
	assert.Equal(t, member.VariantDurationSeconds, c.Storage().Variant)

	buf := put(t, c, time.Hour)
	assert.Equal(t, []byte{0x10, 0x0E, 0, 0, 0, 0, 0, 0}, buf)

	tests := []struct {
		name string
		ro   *ReadOptions
		want member.Duration
	}{
		{"stored unit", nil, member.Duration{Value: 3600, Unit: member.Seconds}},
		{"hours", &ReadOptions{DurationUnit: member.Hours}, member.Duration{Value: 1, Unit: member.Hours}},
		{"millis", &ReadOptions{DurationUnit: member.Milliseconds}, member.Duration{Value: 3_600_000, Unit: member.Milliseconds}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getAny(t, c, buf, tt.ro))
		})
	}

	t.Run("typed destinations", func(t *testing.T) {
		assert.Equal(t, time.Hour, get(t, c, buf, time.Duration(0), nil))
		assert.Equal(t, int64(3600), get(t, c, buf, int64(0), nil))
		assert.Equal(t, int64(60), get(t, c, buf, int64(0), &ReadOptions{DurationUnit: member.Minutes}))
	})

	t.Run("encode forms", func(t *testing.T) {
		for _, v := range []any{3600, member.Duration{Value: 1, Unit: member.Hours}, member.Duration{Value: 3600}, 60 * time.Minute} {
			assert.Equal(t, buf, put(t, c, v), "%v", v)
		}
	})

	t.Run("variant unit", func(t *testing.T) {
		ms := compile(t, member.NewBuilder("d", member.TypeInt64).Variant(member.VariantDurationMillis).MustBuild(), Env{})
		assert.Equal(t, member.Duration{Value: 1500, Unit: member.Milliseconds}, getAny(t, ms, put(t, ms, 1500*time.Millisecond), nil))
	})

	t.Run("negative", func(t *testing.T) {
		assert.Equal(t, -2*time.Hour, get(t, c, put(t, c, -2*time.Hour), time.Duration(0), nil))
	})

	t.Run("rejects strings", func(t *testing.T) {
		err := c.Put(make([]byte, 8), reflect.ValueOf("1h"))
		assert.True(t, errors.Is(err, member.ErrInvalidValue))
	})
}

func TestTimestamp(t *testing.T) {
	c := compile(t, member.NewBuilder("ts", member.TypeTime).MustBuild(), Env{})
	assert.Equal(t, member.VariantTimestampMillis, c.Storage().Variant)

	at := time.Date(2024, 5, 6, 7, 8, 9, 123_456_789, time.FixedZone("X", 3600))
	buf := put(t, c, at)

	got := getAny(t, c, buf, nil).(time.Time)
	assert.True(t, at.Truncate(time.Millisecond).Equal(got))
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, at.UnixMilli(), get(t, c, buf, int64(0), nil))

	assert.Equal(t, buf, put(t, c, at.UnixMilli()))
}
