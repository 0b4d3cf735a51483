package goAuthClient

import (
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goAuthClient/internal/flows"
)

// MetricID identifies a fixed client counter or histogram.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginUnverified
	MetricAutoLoginSuccess
	MetricAutoLoginFailure
	MetricAutoLoginSkipped
	MetricOAuthRedirect
	MetricLogout
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricVerifySuccess
	MetricVerifyFailure
	MetricRecoveryRequest
	MetricRecoveryFailure
	MetricMagicLinkSuccess
	MetricMagicLinkFailure
	MetricValidationFailure
	MetricConnectionAdded
	MetricConnectionRemoved
	MetricConnectionFailure
	MetricUserLoadSuccess
	MetricUserLoadFailure
	MetricSettingsUpdated
	MetricSettingsFailure
	// MetricRemoteCallFailure counts failed HTTP round-trips of the built-in
	// transport.
	MetricRemoteCallFailure
	// MetricRemoteLatency is the only histogram: HTTP round-trip latency of
	// the built-in transport.
	MetricRemoteLatency
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

// Metrics holds lock-free counters for every [MetricID].
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns metrics configured by cfg. Disabled metrics ignore every
// update.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only [MetricRemoteLatency] has a
// histogram; other IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRemoteLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter, and the latency histogram when enabled.
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
		if id == MetricRemoteLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRemoteLatency].buckets[i])
		}
		s.Histograms[MetricRemoteLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

// flowMetrics maps flow counters onto MetricIDs.
var flowMetrics = flows.Metrics{
	LoginSuccess:      int(MetricLoginSuccess),
	LoginFailure:      int(MetricLoginFailure),
	LoginUnverified:   int(MetricLoginUnverified),
	AutoLoginSuccess:  int(MetricAutoLoginSuccess),
	AutoLoginFailure:  int(MetricAutoLoginFailure),
	AutoLoginSkipped:  int(MetricAutoLoginSkipped),
	OAuthRedirect:     int(MetricOAuthRedirect),
	Logout:            int(MetricLogout),
	RegisterSuccess:   int(MetricRegisterSuccess),
	RegisterFailure:   int(MetricRegisterFailure),
	VerifySuccess:     int(MetricVerifySuccess),
	VerifyFailure:     int(MetricVerifyFailure),
	RecoveryRequest:   int(MetricRecoveryRequest),
	RecoveryFailure:   int(MetricRecoveryFailure),
	MagicLinkSuccess:  int(MetricMagicLinkSuccess),
	MagicLinkFailure:  int(MetricMagicLinkFailure),
	ValidationFailure: int(MetricValidationFailure),
	ConnectionAdded:   int(MetricConnectionAdded),
	ConnectionRemoved: int(MetricConnectionRemoved),
	ConnectionFailure: int(MetricConnectionFailure),
	UserLoadSuccess:   int(MetricUserLoadSuccess),
	UserLoadFailure:   int(MetricUserLoadFailure),
	SettingsUpdated:   int(MetricSettingsUpdated),
	SettingsFailure:   int(MetricSettingsFailure),
}
