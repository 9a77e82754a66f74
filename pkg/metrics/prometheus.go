package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	alertsTotal  *prometheus.CounterVec
	slopesTotal  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastEnriched *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder on reg (useful for testing).
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		alertsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertslope_alerts_total",
				Help: "Total number of alerts received for enrichment",
			},
			[]string{"source"},
		),
		slopesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertslope_slopes_total",
				Help: "Slope computations by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertslope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastEnriched: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "alertslope_last_batch_enriched_ratio",
				Help: "Fraction of alerts that received a finite slope in the last batch",
			},
			[]string{"source"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alertslope_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAlerts counts n alerts received from source.
func (r *Recorder) RecordAlerts(source string, n int) {
	r.alertsTotal.WithLabelValues(source).Add(float64(n))
}

// RecordSlopes counts n slope outcomes.
func (r *Recorder) RecordSlopes(outcome string, n int) {
	r.slopesTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordEnrichedRatio sets the enriched fraction of the last batch from source.
func (r *Recorder) RecordEnrichedRatio(source string, ratio float64) {
	r.lastEnriched.WithLabelValues(source).Set(ratio)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordAlerts(string, int) {}
func (Nop) RecordSlopes(string, int) {}
func (Nop) RecordError(string) {}
func (Nop) RecordEnrichedRatio(string, float64) {}
func (Nop) RecordLatency(string, float64) {}
