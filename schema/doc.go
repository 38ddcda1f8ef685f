// Package schema derives compound record schemas.
//
// A Builder produces a Schema, the ordered member descriptors of one record,
// from one of several sources:
//
//   - FromType: a struct type, read declaratively when it carries a marker
//     field (IncludeAll, AnnotatedOnly) or compound struct tags, and
//     introspectively otherwise
//   - FromSamples: a struct type whose strings, slices and bitsets are sized
//     from sample values
//   - FromMap and FromNamesValues: keyed collections whose members are
//     inferred from the runtime values
//   - FromLayout: a committed Layout received from the storage engine
//
// The tag grammar is
//
//	compound:"name,len=8,dims=2x3,unsigned,varlen,explicitlen,ref,variant=seconds,enum=Color,offset=12,size=2"
//
// where every option is optional and compound:"-" excludes a field.
//
// Compare relates two layouts of the same record; a CompatibilityError
// reports a requested layout that conflicts with a registered one.
package schema
