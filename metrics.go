package compound

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// promcollector package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after each record codec compilation.
	// duration is the total time taken, err is nil if successful.
	RecordBuild(key string, duration time.Duration, err error)

	// RecordCacheHit is called when a resolution reuses a registered codec.
	RecordCacheHit(key string)

	// RecordConflict is called when a requested layout is rejected by the
	// compatibility policy.
	RecordConflict(key string)

	// RecordEncode is called after each encode. count is the number of
	// records, duration is the time taken, err is nil if successful.
	// Records of failed calls are not counted.
	RecordEncode(key string, count int, duration time.Duration, err error)

	// RecordDecode is called after each decode.
	RecordDecode(key string, count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(string, time.Duration, error)       {}
func (NoopMetricsCollector) RecordCacheHit(string)                          {}
func (NoopMetricsCollector) RecordConflict(string)                          {}
func (NoopMetricsCollector) RecordEncode(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDecode(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildTotalNanos  atomic.Int64
	CacheHits        atomic.Int64
	Conflicts        atomic.Int64
	EncodeCount      atomic.Int64
	EncodeRecords    atomic.Int64
	EncodeErrors     atomic.Int64
	EncodeTotalNanos atomic.Int64
	DecodeCount      atomic.Int64
	DecodeRecords    atomic.Int64
	DecodeErrors     atomic.Int64
	DecodeTotalNanos atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ string, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit(string) {
	b.CacheHits.Add(1)
}

// RecordConflict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConflict(string) {
	b.Conflicts.Add(1)
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(_ string, count int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EncodeErrors.Add(1)
		return
	}
	b.EncodeRecords.Add(int64(count))
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(_ string, count int, duration time.Duration, err error) {
	b.DecodeCount.Add(1)
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecodeErrors.Add(1)
		return
	}
	b.DecodeRecords.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:     b.BuildCount.Load(),
		BuildErrors:    b.BuildErrors.Load(),
		BuildAvgNanos:  avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		CacheHits:      b.CacheHits.Load(),
		Conflicts:      b.Conflicts.Load(),
		EncodeCount:    b.EncodeCount.Load(),
		EncodeRecords:  b.EncodeRecords.Load(),
		EncodeErrors:   b.EncodeErrors.Load(),
		EncodeAvgNanos: avg(b.EncodeTotalNanos.Load(), b.EncodeCount.Load()),
		DecodeCount:    b.DecodeCount.Load(),
		DecodeRecords:  b.DecodeRecords.Load(),
		DecodeErrors:   b.DecodeErrors.Load(),
		DecodeAvgNanos: avg(b.DecodeTotalNanos.Load(), b.DecodeCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount     int64
	BuildErrors    int64
	BuildAvgNanos  int64
	CacheHits      int64
	Conflicts      int64
	EncodeCount    int64
	EncodeRecords  int64
	EncodeErrors   int64
	EncodeAvgNanos int64
	DecodeCount    int64
	DecodeRecords  int64
	DecodeErrors   int64
	DecodeAvgNanos int64
}
