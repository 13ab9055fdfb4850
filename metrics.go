package sessionguard

import "sync/atomic"

// MetricID identifies a counter in the in-process metrics registry.
type MetricID uint16

const (
	// MetricSignInSuccess counts successful sign-ins.
	MetricSignInSuccess MetricID = iota
	// MetricSignInFailure counts credential rejections.
	MetricSignInFailure
	// MetricSignInLockedOut counts sign-ins blocked by the lockout window.
	MetricSignInLockedOut
	// MetricSignUpSuccess counts successful sign-ups.
	MetricSignUpSuccess
	// MetricSignUpRejected counts sign-ups rejected locally or remotely.
	MetricSignUpRejected
	// MetricRefreshSuccess counts successful session refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed refreshes (each forces sign-out).
	MetricRefreshFailure
	// MetricSessionExpired counts hard expiries.
	MetricSessionExpired
	// MetricSessionRestored counts sessions restored on process start.
	MetricSessionRestored
	// MetricSignOut counts explicit local sign-outs.
	MetricSignOut
	// MetricRemoteSignOut counts sign-outs pushed by the provider.
	MetricRemoteSignOut
	// MetricActivityRecorded counts tracked activity events.
	MetricActivityRecorded
	// MetricStorageWriteFailure counts swallowed storage write failures.
	MetricStorageWriteFailure

	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters. All operations are no-ops when disabled.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// NewMetrics creates a [Metrics] registry configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether the registry records increments.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter atomically (per counter).
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
