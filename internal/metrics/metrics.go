// Package metrics exposes generation counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects generation metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry  *prometheus.Registry
	generated *prometheus.CounterVec
	exhausted *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	attempts  *prometheus.HistogramVec
	batches   prometheus.Counter
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mathdrill",
			Name:      "problems_generated_total",
			Help:      "Problems generated, by topic and mode.",
		}, []string{"topic", "mode"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mathdrill",
			Name:      "generation_exhausted_total",
			Help:      "Generation calls that hit the attempt cap.",
		}, []string{"topic"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mathdrill",
			Name:      "worksheet_fallbacks_total",
			Help:      "Worksheet slots filled with the placeholder problem.",
		}, []string{"topic"}),
		attempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mathdrill",
			Name:      "slot_attempts",
			Help:      "Generation calls needed to fill one worksheet slot.",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}, []string{"topic"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mathdrill",
			Name:      "worksheets_generated_total",
			Help:      "Worksheets generated.",
		}),
	}
	r.registry.MustRegister(r.generated, r.exhausted, r.fallbacks, r.attempts, r.batches)
	return r
}

// Generated counts one accepted problem
func (r *Recorder) Generated(topic, mode string) {
	if r == nil {
		return
	}
	r.generated.WithLabelValues(topic, mode).Inc()
}

// Exhausted counts one exhausted generation call
func (r *Recorder) Exhausted(topic string) {
	if r == nil {
		return
	}
	r.exhausted.WithLabelValues(topic).Inc()
}

// Fallback counts one placeholder slot
func (r *Recorder) Fallback(topic string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(topic).Inc()
}

// SlotAttempts observes how many calls one slot took
func (r *Recorder) SlotAttempts(topic string, n int) {
	if r == nil {
		return
	}
	r.attempts.WithLabelValues(topic).Observe(float64(n))
}

// Worksheet counts one generated worksheet
func (r *Recorder) Worksheet() {
	if r == nil {
		return
	}
	r.batches.Inc()
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
