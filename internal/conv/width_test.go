package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutUint(t *testing.T) {
	tests := []struct {
		width int
		x     uint64
		want  []byte
	}{
		{1, 0xFF, []byte{0xFF}},
		{2, 0x0102, []byte{0x02, 0x01}},
		{4, 0x01020304, []byte{0x04, 0x03, 0x02, 0x01}},
		{8, 1, []byte{1, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		buf := make([]byte, tt.width)
		PutUint(buf, tt.width, tt.x)
		assert.Equal(t, tt.want, buf)
		assert.Equal(t, tt.x, Uint(buf, tt.width))
	}

	assert.Panics(t, func() { PutUint(make([]byte, 3), 3, 0) })
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int64(-1), SignExtend(0xFF, 1))
	assert.Equal(t, int64(127), SignExtend(0x7F, 1))
	assert.Equal(t, int64(-32768), SignExtend(0x8000, 2))
	assert.Equal(t, int64(math.MinInt64), SignExtend(1<<63, 8))
}

func TestBias(t *testing.T) {
	assert.Equal(t, uint64(255), Bias(-1, 1))
	assert.Equal(t, uint64(65535), Bias(-1, 2))
	assert.Equal(t, uint64(7), Bias(7, 4))
	assert.Equal(t, uint64(math.MaxUint64), Bias(-1, 8))
}

func TestFits(t *testing.T) {
	assert.True(t, FitsSigned(-128, 1))
	assert.False(t, FitsSigned(128, 1))
	assert.True(t, FitsSigned(math.MinInt64, 8))
	assert.True(t, FitsUnsigned(255, 1))
	assert.False(t, FitsUnsigned(256, 1))
	assert.True(t, ValidWidth(4))
	assert.False(t, ValidWidth(3))
}
