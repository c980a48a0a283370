package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the primality module.
type Metrics struct {
	// Verdicts by outcome and reason
	Checks *prometheus.CounterVec

	// Rejected inputs by parse error kind
	InvalidInputs *prometheus.CounterVec

	// Time spent in the classifier alone
	ClassifyLatency prometheus.Histogram

	// Size of accepted candidates
	InputDigits prometheus.Histogram

	// Verdict cache lookups by result: "hit", "miss", "error"
	CacheLookups *prometheus.CounterVec

	// History appends that failed
	HistoryErrors prometheus.Counter

	// Checks abandoned because the caller's context ended
	Cancelled prometheus.Counter
}

// New creates the primality metrics on reg. A nil registerer uses the default
// Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_primality_checks_total",
			Help: "Completed primality checks by outcome and reason",
		}, []string{"outcome", "reason"}),

		InvalidInputs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_primality_invalid_inputs_total",
			Help: "Inputs rejected by the integer parser by error kind",
		}, []string{"kind"}),

		ClassifyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "primelab_primality_classify_duration_seconds",
			Help:    "Duration of the classifier rule chain",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),

		InputDigits: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "primelab_primality_input_digits",
			Help:    "Decimal digits of accepted candidates",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "primelab_primality_cache_lookups_total",
			Help: "Verdict cache lookups by result",
		}, []string{"result"}),

		HistoryErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "primelab_primality_history_errors_total",
			Help: "History appends that failed",
		}),

		Cancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "primelab_primality_cancelled_total",
			Help: "Checks abandoned before the classifier finished",
		}),
	}
}

// IncrementCheck records a completed check.
func (m *Metrics) IncrementCheck(outcome, reason string) {
	if m != nil {
		m.Checks.WithLabelValues(outcome, reason).Inc()
	}
}

// IncrementInvalidInput records a rejected input.
func (m *Metrics) IncrementInvalidInput(kind string) {
	if m != nil {
		m.InvalidInputs.WithLabelValues(kind).Inc()
	}
}

// ObserveClassify records the classifier duration.
func (m *Metrics) ObserveClassify(d time.Duration) {
	if m != nil {
		m.ClassifyLatency.Observe(d.Seconds())
	}
}

// ObserveDigits records the size of an accepted candidate.
func (m *Metrics) ObserveDigits(digits int) {
	if m != nil {
		m.InputDigits.Observe(float64(digits))
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordCacheError records a failed cache lookup.
func (m *Metrics) RecordCacheError() {
	if m != nil {
		m.CacheLookups.WithLabelValues("error").Inc()
	}
}

// IncrementHistoryError records a failed history append.
func (m *Metrics) IncrementHistoryError() {
	if m != nil {
		m.HistoryErrors.Inc()
	}
}

// IncrementCancelled records a check abandoned mid-classification.
func (m *Metrics) IncrementCancelled() {
	if m != nil {
		m.Cancelled.Inc()
	}
}
