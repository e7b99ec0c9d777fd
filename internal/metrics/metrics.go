package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results.
const (
	CacheMemoryHit = "memory_hit"
	CacheStoreHit  = "store_hit"
	CacheMiss      = "miss"
)

// Metrics instruments batches, per-symbol tasks, upstream fetches and the series cache.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	BatchDuration prometheus.Histogram
	TaskDuration  prometheus.Histogram
	Tasks         *prometheus.CounterVec
	Fetches       *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vrsentinel_batch_duration_seconds",
			Help:    "Wall time of a full scoring batch.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		TaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vrsentinel_task_duration_seconds",
			Help:    "Wall time of one per-symbol scoring task.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		Tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vrsentinel_tasks_total",
			Help: "Per-symbol task outcomes.",
		}, []string{"outcome"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vrsentinel_fetch_total",
			Help: "Upstream fetch attempts by source and status.",
		}, []string{"source", "status"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vrsentinel_cache_requests_total",
			Help: "Series cache lookups by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.BatchDuration, m.TaskDuration, m.Tasks, m.Fetches, m.CacheRequests)
	}
	return m
}

func (m *Metrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.BatchDuration.Observe(d.Seconds())
}

// ObserveTask records one task outcome; an empty outcome is recorded as "ok".
func (m *Metrics) ObserveTask(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.Tasks.WithLabelValues(outcome).Inc()
	m.TaskDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveFetch(source string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Fetches.WithLabelValues(source, status).Inc()
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}
