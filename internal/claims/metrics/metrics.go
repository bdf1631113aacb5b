package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the claims workflow.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	Submissions       *prometheus.CounterVec
	SubmitLatency     prometheus.Histogram
	StatusTransitions *prometheus.CounterVec
	CommentsAdded     prometheus.Counter
	ExplanationCache  *prometheus.CounterVec
	Explanations      *prometheus.CounterVec
}

// New registers the claims metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimsight_claim_submissions_total",
			Help: "Claim submissions by outcome",
		}, []string{"outcome"}), // outcome: "accepted", "invalid", "model_error", "error"

		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimsight_claim_submit_duration_seconds",
			Help:    "End-to-end duration of the submission workflow",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}),

		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimsight_claim_status_transitions_total",
			Help: "Claim status changes by source and target status",
		}, []string{"from", "to"}),

		CommentsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "claimsight_claim_comments_total",
			Help: "Comments appended to claims",
		}),

		ExplanationCache: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimsight_explanation_cache_total",
			Help: "Explanation cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss"

		Explanations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "claimsight_explanations_total",
			Help: "Explanation requests by outcome",
		}, []string{"outcome"}), // outcome: "ok", "degraded"
	}
}

func (m *Metrics) ObserveSubmission(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
	m.SubmitLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementStatusTransition(from, to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementComments() {
	if m != nil {
		m.CommentsAdded.Inc()
	}
}

func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.ExplanationCache.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.ExplanationCache.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) IncrementExplanation(degraded bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	m.Explanations.WithLabelValues(outcome).Inc()
}
