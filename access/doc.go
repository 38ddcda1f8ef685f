// Package access implements the four access patterns through which a record
// codec reaches the members of a host value:
//
//   - Field: exported struct fields, located once by name (including fields
//     promoted from embedded structs)
//   - Map: a string-keyed map, keyed by member name
//   - List: a ListRecord, indexed by declaration position
//   - Array: a []any whose length must equal the member count
//
// Every pattern produces byte-identical storage. Bindings replace reflective
// field lookup with explicitly registered getters and setters.
package access
