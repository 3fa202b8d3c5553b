package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the conversation pipeline.
type Metrics struct {
	turns           *prometheus.CounterVec
	refusals        *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	queryDuration   prometheus.Histogram
	providerLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "turns_total",
			Help:      "Resolved conversation turns by analysis path and outcome.",
		}, []string{"path", "outcome"}),
		refusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "turn_refusals_total",
			Help:      "Submissions refused before a turn started, by reason.",
		}, []string{"reason"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "uploads_total",
			Help:      "Dataset uploads by file format and outcome.",
		}, []string{"format", "outcome"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lumora",
			Name:      "query_duration_seconds",
			Help:      "Time spent loading the working table and running generated SQL.",
			Buckets:   prometheus.DefBuckets,
		}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lumora",
			Name:      "provider_request_duration_seconds",
			Help:      "Language model round trip latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"provider", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.turns, m.refusals, m.uploads, m.queryDuration, m.providerLatency)
	}
	return m
}

func (m *Metrics) turnResolved(path, outcome string) {
	m.turns.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) turnRefused(reason string) {
	m.refusals.WithLabelValues(reason).Inc()
}

func (m *Metrics) upload(format, outcome string) {
	m.uploads.WithLabelValues(format, outcome).Inc()
}

func (m *Metrics) query(d time.Duration) {
	m.queryDuration.Observe(d.Seconds())
}

// ObserveProvider records one provider round trip.
func (m *Metrics) ObserveProvider(provider string, d time.Duration, err error) {
	m.providerLatency.WithLabelValues(provider, outcomeOf(err)).Observe(d.Seconds())
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
