package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

func overflow(v any, target string) error {
	return fmt.Errorf("%w: %v does not fit %s", ErrOverflow, v, target)
}

// IntToUint32 converts a length or count to the 4-byte form stored in
// length prefixes.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, overflow(v, "uint32")
	}
	return uint32(v), nil
}

// Uint32ToInt converts a stored length prefix back to int.
func Uint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, overflow(v, "int")
	}
	return int(v), nil
}

// Uint64ToInt converts a stored handle or count back to int.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, overflow(v, "int")
	}
	return int(v), nil
}
