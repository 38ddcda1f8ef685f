package testutil

import (
	"math/rand"
	"sync"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Int64Bits returns a pseudo-random signed value that fits in bits bits,
// sign-extended to int64. bits must be in [1, 64].
func (r *RNG) Int64Bits(bits int) int64 {
	v := r.Uint64()
	if bits >= 64 {
		return int64(v)
	}
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// Uint64Bits returns a pseudo-random unsigned value that fits in bits bits.
func (r *RNG) Uint64Bits(bits int) uint64 {
	v := r.Uint64()
	if bits >= 64 {
		return v
	}
	return v & (1<<bits - 1)
}

// ASCII returns a string of letters and digits whose length is drawn
// uniformly from [minLen, maxLen].
func (r *RNG) ASCII(minLen, maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := minLen
	if maxLen > minLen {
		n += r.rand.Intn(maxLen - minLen + 1)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[r.rand.Intn(len(letters))]
	}
	return string(b)
}

// Pick returns one of choices.
func (r *RNG) Pick(choices []string) string {
	return choices[r.Intn(len(choices))]
}

// Float64s returns n values in range [-1, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) Float64s(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = r.rand.Float64()*2 - 1
	}
	return out
}

// Float32Grid generates a rows x cols array with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) Float32Grid(rows, cols int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, rows*cols)
	grid := make([][]float32, rows)
	for i := range rows {
		row := data[i*cols : (i+1)*cols]
		for j := range row {
			row[j] = r.rand.Float32()
		}
		grid[i] = row
	}
	return grid
}

// Words returns n random 64-bit words, suitable as bitset contents.
func (r *RNG) Words(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, n)
	for i := range out {
		out[i] = r.rand.Uint64()
	}
	return out
}
