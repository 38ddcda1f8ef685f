package schema

import (
	"errors"
	"fmt"
)

// ErrIncompatible matches every *CompatibilityError.
var ErrIncompatible = errors.New("incompatible schema")

// Compatibility is the relation of a requested layout to a registered one.
type Compatibility uint8

const (
	// Incompatible layouts disagree on a shared member or the requested
	// layout has members the registered one lacks.
	Incompatible Compatibility = iota
	// Prefix means the requested members are a strict leading subset of the
	// registered members, placed identically.
	Prefix
	// Equal layouts describe the same record.
	Equal
)

// String returns the string representation of the Compatibility.
func (c Compatibility) String() string {
	switch c {
	case Incompatible:
		return "incompatible"
	case Prefix:
		return "prefix"
	case Equal:
		return "equal"
	default:
		return "Unknown"
	}
}

// Compare relates a requested layout to the registered layout of the same
// key. Names of the layouts themselves are not compared.
func Compare(registered, requested Layout) Compatibility {
	if registered.Equal(requested) {
		return Equal
	}
	if registered.Variant != requested.Variant || len(requested.Members) >= len(registered.Members) {
		return Incompatible
	}
	for i, m := range requested.Members {
		if !m.Equal(registered.Members[i]) {
			return Incompatible
		}
	}
	return Prefix
}

// CompatibilityError reports a requested layout that conflicts with the
// layout already registered under Key.
type CompatibilityError struct {
	Key        string
	Registered Layout
	Requested  Layout
	Relation   Compatibility
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("schema %q: requested layout %s conflicts with registered layout %s (%s)",
		e.Key, e.Requested, e.Registered, e.Relation)
}

// Is reports whether target is ErrIncompatible.
func (e *CompatibilityError) Is(target error) bool { return target == ErrIncompatible }
