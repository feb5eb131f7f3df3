package simulation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-run engine telemetry. A nil *Metrics is a no-op.
type Metrics struct {
	runs     *prometheus.CounterVec
	optimal  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the collectors on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stroke",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Pipeline passes by outcome (evaluated, trivial, failed).",
		}, []string{"outcome"}),
		optimal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stroke",
			Subsystem: "engine",
			Name:      "optimal_total",
			Help:      "Optimal strategy picks by strategy kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stroke",
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one pipeline pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.optimal, m.duration)
	}
	return m
}

func (m *Metrics) observe(res SingleRunResult, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		m.runs.WithLabelValues("failed").Inc()
		return
	case res.Trivial:
		m.runs.WithLabelValues("trivial").Inc()
	default:
		m.runs.WithLabelValues("evaluated").Inc()
	}
	m.optimal.WithLabelValues(res.Optimal.Kind.String()).Inc()
}
