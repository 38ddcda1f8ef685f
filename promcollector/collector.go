// Package promcollector exports compound registry metrics to Prometheus.
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/compound"
)

const defaultNamespace = "compound"

// Collector implements compound.MetricsCollector on Prometheus counters and
// histograms. It is also a prometheus.Collector.
type Collector struct {
	builds    *prometheus.CounterVec
	buildTime prometheus.Histogram
	cacheHits *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	records   *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

var (
	_ compound.MetricsCollector = (*Collector)(nil)
	_ prometheus.Collector      = (*Collector)(nil)
)

// New creates a Collector. An empty namespace defaults to "compound".
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &Collector{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Record codec compilations by schema key and outcome.",
		}, []string{"key", "outcome"}),
		buildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent compiling record codecs.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Resolutions served by an already registered codec.",
		}, []string{"key"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_total",
			Help:      "Requested layouts rejected by the compatibility policy.",
		}, []string{"key"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records encoded or decoded.",
		}, []string{"key", "op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed encodes and decodes.",
		}, []string{"key", "op"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "op_duration_seconds",
			Help:      "Latency of encode and decode calls.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"op"}),
	}
}

// MustRegister creates a Collector and registers it with reg.
func MustRegister(reg prometheus.Registerer, namespace string) *Collector {
	c := New(namespace)
	reg.MustRegister(c)
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.builds.Describe(ch)
	c.buildTime.Describe(ch)
	c.cacheHits.Describe(ch)
	c.conflicts.Describe(ch)
	c.records.Describe(ch)
	c.errors.Describe(ch)
	c.latency.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.builds.Collect(ch)
	c.buildTime.Collect(ch)
	c.cacheHits.Collect(ch)
	c.conflicts.Collect(ch)
	c.records.Collect(ch)
	c.errors.Collect(ch)
	c.latency.Collect(ch)
}

// RecordBuild implements compound.MetricsCollector.
func (c *Collector) RecordBuild(key string, d time.Duration, err error) {
	c.builds.WithLabelValues(key, outcome(err)).Inc()
	c.buildTime.Observe(d.Seconds())
}

// RecordCacheHit implements compound.MetricsCollector.
func (c *Collector) RecordCacheHit(key string) {
	c.cacheHits.WithLabelValues(key).Inc()
}

// RecordConflict implements compound.MetricsCollector.
func (c *Collector) RecordConflict(key string) {
	c.conflicts.WithLabelValues(key).Inc()
}

// RecordEncode implements compound.MetricsCollector.
func (c *Collector) RecordEncode(key string, count int, d time.Duration, err error) {
	c.observe("encode", key, count, d, err)
}

// RecordDecode implements compound.MetricsCollector.
func (c *Collector) RecordDecode(key string, count int, d time.Duration, err error) {
	c.observe("decode", key, count, d, err)
}

func (c *Collector) observe(op, key string, count int, d time.Duration, err error) {
	c.latency.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		c.errors.WithLabelValues(key, op).Inc()
		return
	}
	c.records.WithLabelValues(key, op).Add(float64(count))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
