package sealbox

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by sealbox APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricSealSuccess is an exported constant or variable used by the sealbox codec.
	MetricSealSuccess MetricID = iota
	// MetricSealFailure is an exported constant or variable used by the sealbox codec.
	MetricSealFailure
	// MetricOpenSuccess is an exported constant or variable used by the sealbox codec.
	MetricOpenSuccess
	// MetricOpenInvalidMessage is an exported constant or variable used by the sealbox codec.
	MetricOpenInvalidMessage
	// MetricOpenInvalidSignature is an exported constant or variable used by the sealbox codec.
	MetricOpenInvalidSignature
	// MetricOpenFailure is an exported constant or variable used by the sealbox codec.
	MetricOpenFailure
	// MetricLegacyAccepted is an exported constant or variable used by the sealbox codec.
	MetricLegacyAccepted
	// MetricSessionCreated is an exported constant or variable used by the sealbox codec.
	MetricSessionCreated
	// MetricSessionLoaded is an exported constant or variable used by the sealbox codec.
	MetricSessionLoaded
	// MetricSessionSaved is an exported constant or variable used by the sealbox codec.
	MetricSessionSaved
	// MetricSessionRejected is an exported constant or variable used by the sealbox codec.
	MetricSessionRejected
	// MetricSessionDestroyed is an exported constant or variable used by the sealbox codec.
	MetricSessionDestroyed
	// MetricStoreUnavailable is an exported constant or variable used by the sealbox codec.
	MetricStoreUnavailable
	// MetricOpenLatency is an exported constant or variable used by the sealbox codec.
	MetricOpenLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by sealbox APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot defines a public type used by sealbox APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics may return an error when input validation, dependency calls, or security checks fail.
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled may return an error when input validation, dependency calls, or security checks fail.
// Enabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled describes the latencyenabled operation and its observable behavior.
//
// LatencyEnabled may return an error when input validation, dependency calls, or security checks fail.
// LatencyEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc describes the inc operation and its observable behavior.
//
// Inc may return an error when input validation, dependency calls, or security checks fail.
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe describes the observe operation and its observable behavior.
//
// Observe may return an error when input validation, dependency calls, or security checks fail.
// Observe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricOpenLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value describes the value operation and its observable behavior.
//
// Value may return an error when input validation, dependency calls, or security checks fail.
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricOpenLatency].buckets[i])
		}
		s.Histograms[MetricOpenLatency] = buckets
	}

	return s
}

// Open is a microsecond-scale operation, so the buckets sit well below the
// millisecond ranges a network call would use.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 25:
		return 0
	case us <= 50:
		return 1
	case us <= 100:
		return 2
	case us <= 250:
		return 3
	case us <= 500:
		return 4
	case us <= 1000:
		return 5
	case us <= 5000:
		return 6
	default:
		return 7
	}
}
