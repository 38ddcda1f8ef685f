// Package strategy maps member logical types to their byte encodings.
//
// A Strategy inspects a member.Descriptor (and optionally the external
// storage type the engine declared for it) and compiles a Codec: a fixed-size
// transform between a host value and the member's slot in a record buffer.
// The Registry consults strategies in priority order and resolves each
// member exactly once, when its record codec is built:
//
//	reference, bitset, duration, timestamp, enum, string, bool, float, integer
//
// Custom strategies are added with Registry.With and take precedence over
// the built-ins.
//
// All integers are stored little-endian. Scalar codecs extend to arrays of
// any rank through nested slices or Go arrays; the runtime extents must
// equal the declared dimensions.
package strategy
