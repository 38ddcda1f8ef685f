package conv

import (
	"encoding/binary"
	"fmt"
)

// ValidWidth reports whether n is a supported integer storage width.
func ValidWidth(n int) bool {
	return n == 1 || n == 2 || n == 4 || n == 8
}

// PutUint writes the low width bytes of x to dst in little-endian order.
func PutUint(dst []byte, width int, x uint64) {
	switch width {
	case 1:
		dst[0] = byte(x)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(x))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(x))
	case 8:
		binary.LittleEndian.PutUint64(dst, x)
	default:
		panic(fmt.Sprintf("conv: unsupported width %d", width))
	}
}

// Uint reads a width byte little-endian unsigned integer from src.
func Uint(src []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(src))
	case 4:
		return uint64(binary.LittleEndian.Uint32(src))
	case 8:
		return binary.LittleEndian.Uint64(src)
	default:
		panic(fmt.Sprintf("conv: unsupported width %d", width))
	}
}

// SignExtend interprets the low width bytes of x as a two's-complement
// integer.
func SignExtend(x uint64, width int) int64 {
	shift := uint(64 - 8*width)
	return int64(x<<shift) >> shift
}

// Bias maps a signed value onto a width byte unsigned slot:
// v < 0 ? v + 2^(8*width) : v. Values outside the slot are truncated.
func Bias(v int64, width int) uint64 {
	return Mask(uint64(v), width)
}

// Mask keeps the low width bytes of x.
func Mask(x uint64, width int) uint64 {
	if width >= 8 {
		return x
	}
	return x & (1<<(8*uint(width)) - 1)
}

// FitsSigned reports whether v is representable in width bytes.
func FitsSigned(v int64, width int) bool {
	if width >= 8 {
		return true
	}
	lim := int64(1) << (8*uint(width) - 1)
	return v >= -lim && v < lim
}

// FitsUnsigned reports whether x is representable in width bytes.
func FitsUnsigned(x uint64, width int) bool {
	return Mask(x, width) == x
}
