package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for hosted model calls.
type Metrics struct {
	CallLatency     *prometheus.HistogramVec
	CallOutcome     *prometheus.CounterVec
	ForgeryVerdicts *prometheus.CounterVec
}

// New creates a new Metrics instance with all analysis metrics registered.
func New() *Metrics {
	return &Metrics{
		CallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claimsight_analysis_call_duration_seconds",
			Help:    "Duration of hosted model calls by operation",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"operation"}),

		CallOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimsight_analysis_calls_total",
			Help: "Total hosted model calls by operation and outcome",
		}, []string{"operation", "outcome"}), // outcome: "ok", "error"

		ForgeryVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimsight_analysis_forgery_verdicts_total",
			Help: "Document forgery verdicts returned by the model",
		}, []string{"verdict"}),
	}
}

// ObserveCall records the latency and outcome of one model call.
func (m *Metrics) ObserveCall(operation, outcome string, d time.Duration) {
	if m != nil {
		m.CallLatency.WithLabelValues(operation).Observe(d.Seconds())
		m.CallOutcome.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) IncrementForgeryVerdict(suspected bool) {
	if m == nil {
		return
	}
	verdict := "passed"
	if suspected {
		verdict = "suspected"
	}
	m.ForgeryVerdicts.WithLabelValues(verdict).Inc()
}
