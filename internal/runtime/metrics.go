package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// unknownLabel stands in for the module and function of a call that resolved
// to nothing.
const unknownLabel = "unknown"

// Metrics counts dispatches and deposited events. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	calls    *prometheus.CounterVec
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastSeq  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "janus",
			Name:      "calls_total",
			Help:      "Dispatched calls by outcome.",
		}, []string{"module", "function", "outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "janus",
			Name:      "events_total",
			Help:      "Events appended to the log.",
		}, []string{"pallet", "variant"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "janus",
			Name:      "dispatch_duration_seconds",
			Help:      "Time from call resolution to commit or rollback.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"module", "function"}),
		lastSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "janus",
			Name:      "last_seq",
			Help:      "Highest logical clock value issued.",
		}),
	}
	reg.MustRegister(m.calls, m.events, m.duration, m.lastSeq)
	return m
}

func (m *Metrics) observeCall(module, function, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(module, function, outcome).Inc()
	m.duration.WithLabelValues(module, function).Observe(elapsed.Seconds())
}

func (m *Metrics) observeEvent(pallet, variant string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(pallet, variant).Inc()
}

func (m *Metrics) setSeq(seq int64) {
	if m == nil {
		return
	}
	m.lastSeq.Set(float64(seq))
}
