package codec

import (
	"github.com/hupe1980/compound/access"
	"github.com/hupe1980/compound/member"
	"github.com/hupe1980/compound/strategy"
)

type options struct {
	registry    *strategy.Registry
	env         strategy.Env
	pattern     access.Pattern
	hasPattern  bool
	parallelism int
	read        strategy.ReadOptions
}

// Option configures a Record.
type Option func(*options)

func defaultOptions() options {
	return options{
		registry:    strategy.Default(),
		parallelism: 1,
	}
}

// WithRegistry sets the strategy registry used to compile member codecs.
//
// Defaults to strategy.Default().
func WithRegistry(r *strategy.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithVarLenStore sets the variable-length store that backs variable-length
// string members. Records with such members fail to build without one.
func WithVarLenStore(s strategy.VarLenStore) Option {
	return func(o *options) {
		o.env.VarLen = s
	}
}

// WithReferenceResolver sets the resolver used by reference members to
// accept and produce paths.
func WithReferenceResolver(r strategy.ReferenceResolver) Option {
	return func(o *options) {
		o.env.Resolver = r
	}
}

// WithBindings sets explicit getters and setters that replace reflective
// field access for the bound members.
func WithBindings(b *access.Bindings) Option {
	return func(o *options) {
		o.env.Bindings = b
	}
}

// WithPattern forces the access pattern. By default a schema with a host
// type uses Field access and every other schema uses Map access.
func WithPattern(p access.Pattern) Option {
	return func(o *options) {
		o.pattern = p
		o.hasPattern = true
	}
}

// WithParallelism sets the maximum number of goroutines EncodeBatch and
// DecodeBatch use for large batches.
//
// Values below 1 are treated as 1 (sequential). Defaults to 1.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.parallelism = n
	}
}

// WithReadOptions sets the read options applied by every decode unless a
// call overrides them.
func WithReadOptions(ro strategy.ReadOptions) Option {
	return func(o *options) {
		o.read = ro
	}
}

// ReadOption adjusts the decoded shape of one Decode call.
type ReadOption func(*strategy.ReadOptions)

// EnumAs selects the shape of enumeration members decoded into untyped
// destinations.
func EnumAs(as member.EnumAs) ReadOption {
	return func(ro *strategy.ReadOptions) {
		ro.EnumAs = as
	}
}

// DurationUnit converts decoded durations to unit.
func DurationUnit(unit member.TimeUnit) ReadOption {
	return func(ro *strategy.ReadOptions) {
		ro.DurationUnit = unit
	}
}
