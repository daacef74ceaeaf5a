package db

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSet holds Prometheus metrics for the database core. Metrics
// are registered once per process on the default registry; the HTTP
// layer exposes them on /metrics.
type metricsSet struct {
	once sync.Once

	// Commit path
	commits      prometheus.Counter
	noopWrites   prometheus.Counter
	casConflicts prometheus.Counter

	// Poll engine
	pollWaiters  prometheus.Gauge
	pollTimeouts prometheus.Counter
	pollLiveHits prometheus.Counter
	pollScanHits prometheus.Counter

	// Query evaluator
	findDuration prometheus.Histogram
}

var coreMetrics metricsSet

func (m *metricsSet) init() {
	m.once.Do(func() {
		m.commits = prometheus.NewCounter(prometheus.CounterOpts{Name: "quill_commits_total", Help: "Successful document commits"})
		m.noopWrites = prometheus.NewCounter(prometheus.CounterOpts{Name: "quill_noop_writes_total", Help: "Writes discarded because the diff was empty"})
		m.casConflicts = prometheus.NewCounter(prometheus.CounterOpts{Name: "quill_cas_conflicts_total", Help: "setIfVersion calls whose expected version did not match"})

		m.pollWaiters = prometheus.NewGauge(prometheus.GaugeOpts{Name: "quill_poll_waiters", Help: "Poll calls currently blocked on a live event"})
		m.pollTimeouts = prometheus.NewCounter(prometheus.CounterOpts{Name: "quill_poll_timeouts_total", Help: "Poll calls that returned empty on timeout"})
		m.pollLiveHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "quill_poll_live_hits_total", Help: "Poll calls resolved by a live patch event"})
		m.pollScanHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "quill_poll_scan_hits_total", Help: "Poll calls resolved by the initial history scan"})

		m.findDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "quill_find_duration_seconds", Help: "Full-scan query latency", Buckets: prometheus.DefBuckets})

		prometheus.MustRegister(
			m.commits, m.noopWrites, m.casConflicts,
			m.pollWaiters, m.pollTimeouts, m.pollLiveHits, m.pollScanHits,
			m.findDuration,
		)
	})
}
