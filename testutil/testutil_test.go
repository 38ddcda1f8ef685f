package testutil

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReset(t *testing.T) {
	rng := NewRNG(4711)

	a := rng.Words(4)
	s := rng.ASCII(3, 3)
	rng.Reset()

	assert.Equal(t, a, rng.Words(4))
	assert.Equal(t, s, rng.ASCII(3, 3))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestBits(t *testing.T) {
	rng := NewRNG(4711)

	for range 1000 {
		v := rng.Int64Bits(8)
		assert.GreaterOrEqual(t, v, int64(math.MinInt8))
		assert.LessOrEqual(t, v, int64(math.MaxInt8))

		u := rng.Uint64Bits(16)
		assert.LessOrEqual(t, u, uint64(math.MaxUint16))
	}
}

func TestASCII(t *testing.T) {
	rng := NewRNG(4711)

	for range 100 {
		s := rng.ASCII(1, 8)
		assert.GreaterOrEqual(t, len(s), 1)
		assert.LessOrEqual(t, len(s), 8)
		assert.NotContains(t, s, "\x00")
	}
	assert.Equal(t, "", rng.ASCII(0, 0))
}

func TestShapes(t *testing.T) {
	rng := NewRNG(4711)

	f := rng.Float64s(32)
	assert.Len(t, f, 32)
	for _, x := range f {
		assert.GreaterOrEqual(t, x, -1.0)
		assert.Less(t, x, 1.0)
	}

	g := rng.Float32Grid(3, 4)
	assert.Len(t, g, 3)
	assert.Len(t, g[2], 4)

	assert.Contains(t, []string{"a", "b"}, rng.Pick([]string{"a", "b"}))
}

func TestConcurrentUse(t *testing.T) {
	rng := NewRNG(4711)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = rng.ASCII(1, 4)
				_ = rng.Uint64()
			}
		}()
	}
	wg.Wait()
}
