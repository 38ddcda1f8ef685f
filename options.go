package compound

import (
	"log/slog"

	"github.com/hupe1980/compound/access"
	"github.com/hupe1980/compound/codec"
	"github.com/hupe1980/compound/member"
	"github.com/hupe1980/compound/strategy"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	strategies       []strategy.Strategy
	enums            *member.EnumRegistry
	variants         *member.VariantRegistry
	varLen           strategy.VarLenStore
	resolver         strategy.ReferenceResolver
	bindings         *access.Bindings
	parallelism      int
	layoutCodec      codec.Codec
	readOptions      strategy.ReadOptions
}

// Option configures a Registry.
type Option func(*options)

// WithLogger configures structured logging for builds and batches.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := compound.NewJSONLogger(os.Stderr, slog.LevelInfo)
//	reg := compound.NewRegistry(compound.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel logs text records to stderr at level and above.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(nil, level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring builds,
// cache hits, encodes and decodes.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &compound.BasicMetricsCollector{}
//	reg := compound.NewRegistry(compound.WithMetricsCollector(metrics))
//	// ... use reg ...
//	stats := metrics.GetStats()
//	fmt.Printf("Builds: %d, Cache hits: %d\n", stats.BuildCount, stats.CacheHits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithStrategies registers custom type strategies. They are consulted
// before the built-in strategies, in the given order.
func WithStrategies(s ...strategy.Strategy) Option {
	return func(o *options) {
		o.strategies = append(o.strategies, s...)
	}
}

// WithEnums sets the enumeration registry consulted by enum= tags and by
// layouts that name an enumeration without listing its values.
func WithEnums(r *member.EnumRegistry) Option {
	return func(o *options) {
		o.enums = r
	}
}

// WithVariants sets per-member and per-record type variant overrides.
func WithVariants(r *member.VariantRegistry) Option {
	return func(o *options) {
		o.variants = r
	}
}

// WithVarLenStore sets the storage engine's variable-length mechanism used
// by variable-length string members.
func WithVarLenStore(s strategy.VarLenStore) Option {
	return func(o *options) {
		o.varLen = s
	}
}

// WithReferenceResolver sets the resolver that translates reference members
// to and from paths.
func WithReferenceResolver(r strategy.ReferenceResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithBindings sets explicit getters and setters for struct members.
func WithBindings(b *access.Bindings) Option {
	return func(o *options) {
		o.bindings = b
	}
}

// WithParallelism sets the goroutine limit for large batch encodes and
// decodes. Values below 1 disable parallel batches.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLayoutCodec configures the codec used to export and import layouts.
//
// If nil is passed, codec.Default is used.
func WithLayoutCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.layoutCodec = c
	}
}

// WithReadOptions sets the default decoded shape of enumerations and
// durations for every codec built by the registry.
func WithReadOptions(ro strategy.ReadOptions) Option {
	return func(o *options) {
		o.readOptions = ro
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		parallelism:      1,
		layoutCodec:      codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) codecOptions() []codec.Option {
	reg := strategy.Default()
	if len(o.strategies) > 0 {
		reg = reg.With(o.strategies...)
	}
	return []codec.Option{
		codec.WithRegistry(reg),
		codec.WithVarLenStore(o.varLen),
		codec.WithReferenceResolver(o.resolver),
		codec.WithBindings(o.bindings),
		codec.WithParallelism(o.parallelism),
		codec.WithReadOptions(o.readOptions),
	}
}
