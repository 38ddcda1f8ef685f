// Package testutil provides testing utilities for compound record codecs.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random source for generating record
// contents: integers across the full width of a member, bounded ASCII
// strings, float arrays and bitset words.
//
// # Deterministic Records
//
//	rng := testutil.NewRNG(seed)
//	label := rng.ASCII(1, 8)          // 1 to 8 letters
//	grid := rng.Float64s(16)          // values in [-1, 1)
//	words := rng.Words(4)             // bitset words
//	id := rng.Int64Bits(32)           // any int32 value, sign-extended
//
// The same seed yields the same sequence, so a failing test can be
// replayed from the seed it logs.
package testutil
