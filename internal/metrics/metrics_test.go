package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBatch(time.Second)
		m.ObserveTask("", time.Second)
		m.ObserveFetch("fmp", nil)
		m.ObserveCache(CacheMiss)
	})
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTask("", 10*time.Millisecond)
	m.ObserveTask("TIMEOUT", 30*time.Second)
	m.ObserveFetch("fmp", errors.New("429"))
	m.ObserveFetch("yahoo", nil)
	m.ObserveCache(CacheMemoryHit)
	m.ObserveBatch(2 * time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tasks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tasks.WithLabelValues("TIMEOUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("fmp", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("yahoo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(CacheMemoryHit)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "vrsentinel_batch_duration_seconds")
	assert.Contains(t, names, "vrsentinel_task_duration_seconds")
}

func TestNew_WithoutRegistry(t *testing.T) {
	m := New(nil)
	m.ObserveCache(CacheStoreHit)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(CacheStoreHit)))
}
