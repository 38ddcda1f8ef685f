package compound

import (
	"errors"
	"fmt"

	"github.com/hupe1980/compound/member"
	"github.com/hupe1980/compound/schema"
)

var (
	// ErrMapping matches errors from inconsistent member declarations.
	ErrMapping = member.ErrMapping
	// ErrDimensionMismatch matches arrays whose runtime extents disagree
	// with the declared dimensions.
	ErrDimensionMismatch = member.ErrDimensionMismatch
	// ErrAccess matches members an access pattern cannot reach.
	ErrAccess = member.ErrAccess
	// ErrInvalidValue matches values a member cannot store or decode.
	ErrInvalidValue = member.ErrInvalidValue
	// ErrIncompatible matches layouts rejected by a compatibility policy.
	ErrIncompatible = schema.ErrIncompatible
	// ErrNotFound is returned when no codec is registered under a key.
	ErrNotFound = errors.New("not found")
)

type (
	// MappingError is an alias of member.MappingError.
	MappingError = member.MappingError
	// DimensionMismatchError is an alias of member.DimensionMismatchError.
	DimensionMismatchError = member.DimensionMismatchError
	// AccessError is an alias of member.AccessError.
	AccessError = member.AccessError
	// ValueError is an alias of member.ValueError.
	ValueError = member.ValueError
	// CompatibilityError is an alias of schema.CompatibilityError.
	CompatibilityError = schema.CompatibilityError
)

// ErrInvalidPolicy indicates an unknown compatibility policy.
type ErrInvalidPolicy struct {
	Policy Policy
}

func (e *ErrInvalidPolicy) Error() string {
	return fmt.Sprintf("invalid compatibility policy: %d", e.Policy)
}

func notFound(key string) error {
	return fmt.Errorf("%w: schema %q", ErrNotFound, key)
}
