package promcollector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compound"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func counter(mf *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range mf.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := MustRegister(reg, "")

	c.RecordBuild("row", time.Millisecond, nil)
	c.RecordBuild("row", time.Millisecond, errors.New("boom"))
	c.RecordCacheHit("row")
	c.RecordConflict("row")
	c.RecordEncode("row", 10, time.Microsecond, nil)
	c.RecordDecode("row", 1, time.Microsecond, errors.New("short"))

	mfs := gather(t, reg)
	assert.Equal(t, 1.0, counter(mfs["compound_builds_total"], map[string]string{"outcome": "ok"}))
	assert.Equal(t, 1.0, counter(mfs["compound_builds_total"], map[string]string{"outcome": "error"}))
	assert.Equal(t, 1.0, counter(mfs["compound_cache_hits_total"], nil))
	assert.Equal(t, 1.0, counter(mfs["compound_conflicts_total"], nil))
	assert.Equal(t, 10.0, counter(mfs["compound_records_total"], map[string]string{"op": "encode"}))
	assert.Equal(t, 1.0, counter(mfs["compound_errors_total"], map[string]string{"op": "decode"}))
	assert.Equal(t, uint64(2), mfs["compound_op_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount()+
		mfs["compound_op_duration_seconds"].GetMetric()[1].GetHistogram().GetSampleCount())
}

type point struct {
	X int32
	Y int32
}

func TestCollectorWithRegistry(t *testing.T) {
	preg := prometheus.NewRegistry()
	c := MustRegister(preg, "test")

	ctx := context.Background()
	r := compound.NewRegistry(compound.WithMetricsCollector(c))
	_, err := compound.For[point](ctx, r, "point", compound.Strict)
	require.NoError(t, err)
	_, err = compound.For[point](ctx, r, "point", compound.Strict)
	require.NoError(t, err)

	_, err = r.EncodeBatch(ctx, "point", []point{{1, 2}, {3, 4}})
	require.NoError(t, err)

	mfs := gather(t, preg)
	assert.Equal(t, 1.0, counter(mfs["test_builds_total"], nil))
	assert.Equal(t, 1.0, counter(mfs["test_cache_hits_total"], nil))
	assert.Equal(t, 2.0, counter(mfs["test_records_total"], map[string]string{"op": "encode"}))
}
