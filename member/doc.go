// Package member describes the members of compound records.
//
// A Descriptor names one member, its logical Type, its dimensions and the
// facets that refine the type (unsigned, variable length, reference,
// explicit string length) together with an optional type Variant. Descriptors
// are assembled with a Builder and frozen by Build, which rejects shapes that
// are inconsistent with the logical type:
//
//	d, err := member.NewBuilder("label", member.TypeString).
//	    Length(8).
//	    Build()
//
// StorageType is the outbound description of a member that the storage
// engine uses to create or validate a matching on-disk type.
//
// The package also defines the error taxonomy shared by the schema,
// strategy and codec packages: MappingError, DimensionMismatchError,
// AccessError and ValueError.
package member
