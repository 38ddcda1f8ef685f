// Package conv provides checked integer conversions and the little-endian,
// width-generic integer helpers used by the member codecs.
//
// The checked conversions validate values read back from untrusted buffers
// (length prefixes, heap handles). The width helpers read and write 1, 2, 4
// and 8 byte integers and implement the two's-complement bias conversion
// between signed host values and unsigned storage.
package conv
