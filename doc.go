// Package compound converts Go record values into fixed-layout binary
// compound records and back.
//
// A compound record is a structured value with named, independently typed
// members laid out as one fixed-size block, like a C struct. The storage
// engine that persists these blocks is external: it only exchanges opaque
// byte buffers and storage-type descriptions (schema.Layout) with this
// package.
//
// # Quick Start
//
//	type Row struct {
//	    _     schema.AnnotatedOnly
//	    ID    uint32 `compound:"id"`
//	    Label string `compound:"label,len=8"`
//	    Flags string `compound:"flags,enum=Flags"`
//	}
//
//	enums := member.NewEnumRegistry(member.MustEnumType("Flags", "NONE", "READ", "WRITE"))
//	reg := compound.NewRegistry(compound.WithEnums(enums))
//
//	rec, _ := compound.For[Row](ctx, reg, "row", compound.Strict)
//	buf, _ := rec.Encode(Row{ID: 42, Label: "hi", Flags: "READ"}) // 13 bytes
//
//	var out Row
//	_ = rec.Decode(buf, &out)
//
// # Access Patterns
//
// The same layout is reachable through struct fields, name-keyed maps,
// positional lists (access.ListRecord) and positional arrays ([]any). All
// four produce byte-identical buffers.
//
// # Schema Compatibility
//
// The Registry memoizes one codec per key. Every resolution names a Policy
// that settles what happens when the requested layout differs from the
// registered one: Strict rejects it, Replace makes it authoritative, and
// CompatiblePrefix accepts a leading subset of the registered members.
//
// # Packages
//
//   - member: descriptors, logical types, variants, enumerations, errors
//   - schema: schema inference, layouts, compatibility
//   - access: the four access patterns and explicit bindings
//   - strategy: type strategies and member codecs
//   - codec: whole-record, batch and string-block codecs
//   - promcollector: Prometheus metrics
//   - cmd/compound: command line tool for layouts and hex records
package compound
