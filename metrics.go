package goSession

import "sync/atomic"

// MetricID identifies a counter in the in-process metrics system.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	// MetricRefreshShared counts callers that attached to an already
	// in-flight refresh instead of starting their own.
	MetricRefreshShared
	// MetricRefreshSuppressed counts refresh requests refused by the
	// exhausted latch.
	MetricRefreshSuppressed
	// MetricRequestRetried counts requests resubmitted after a refresh.
	MetricRequestRetried
	// MetricForcedLogout counts session teardowns triggered by an
	// irrecoverable refresh failure.
	MetricForcedLogout
	MetricLogout
	MetricSetupCompleted

	metricIDCount
)

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a Metrics instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the given counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter. Safe to call concurrently with Inc.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
