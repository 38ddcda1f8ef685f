package member

import (
	"errors"
	"fmt"
)

var (
	// ErrMapping matches every *MappingError.
	ErrMapping = errors.New("member mapping error")
	// ErrDimensionMismatch matches every *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrAccess matches every *AccessError.
	ErrAccess = errors.New("member access error")
	// ErrInvalidValue matches every *ValueError.
	ErrInvalidValue = errors.New("invalid member value")
)

// MappingError indicates that a member's declared shape is inconsistent with
// its logical type. It is raised while building a schema.
type MappingError struct {
	Member string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("member %q: %s", e.Member, e.Reason)
}

// Is reports whether target is ErrMapping.
func (e *MappingError) Is(target error) bool { return target == ErrMapping }

// Mappingf returns a *MappingError for member.
func Mappingf(member, format string, args ...any) *MappingError {
	return &MappingError{Member: member, Reason: fmt.Sprintf(format, args...)}
}

// DimensionMismatchError indicates that the runtime extents of an encoded
// array disagree with the member's declared dimensions.
type DimensionMismatchError struct {
	Member   string
	Axis     int
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("member %q: dimension mismatch on axis %d: expected %d, got %d", e.Member, e.Axis, e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// AccessError indicates that an access pattern cannot reach a member.
type AccessError struct {
	Member  string
	Pattern string
	Reason  string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("member %q: %s access: %s", e.Member, e.Pattern, e.Reason)
}

// Is reports whether target is ErrAccess.
func (e *AccessError) Is(target error) bool { return target == ErrAccess }

// ValueError indicates a host value that cannot be stored in, or decoded
// into, a member.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ValueError struct {
	Member string
	Reason string
	cause  error
}

func (e *ValueError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("member %q: %s: %v", e.Member, e.Reason, e.cause)
	}
	return fmt.Sprintf("member %q: %s", e.Member, e.Reason)
}

// Is reports whether target is ErrInvalidValue.
func (e *ValueError) Is(target error) bool { return target == ErrInvalidValue }

func (e *ValueError) Unwrap() error { return e.cause }

// Valuef returns a *ValueError for member.
func Valuef(member, format string, args ...any) *ValueError {
	return &ValueError{Member: member, Reason: fmt.Sprintf(format, args...)}
}

// WrapValue returns a *ValueError carrying cause.
func WrapValue(member, reason string, cause error) *ValueError {
	return &ValueError{Member: member, Reason: reason, cause: cause}
}
