package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "knmi_forecast"

// Metrics holds the Prometheus collectors for forecast extraction.
type Metrics struct {
	Extractions        *prometheus.CounterVec // labels: outcome={ok,partial,empty}
	VariablesOmitted   *prometheus.CounterVec // labels: variable
	ValuesMissing      *prometheus.CounterVec // labels: variable
	SamplesEmitted     prometheus.Counter
	ExtractionDuration prometheus.Histogram

	// Sink metrics.
	SamplesPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extractions by outcome.",
		}, []string{"outcome"}),
		VariablesOmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variables_omitted_total",
			Help:      "Variables dropped from a forecast because they could not be resolved.",
		}, []string{"variable"}),
		ValuesMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_missing_total",
			Help:      "Individual values reported as missing (fill, NaN or read failure).",
		}, []string{"variable"}),
		SamplesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_emitted_total",
			Help:      "Weather samples returned by extractions.",
		}),
		ExtractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of a single file extraction.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		SamplesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_published_total",
			Help:      "Samples written to the sample sink.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed sample sink writes.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Extractions,
		m.VariablesOmitted,
		m.ValuesMissing,
		m.SamplesEmitted,
		m.ExtractionDuration,
		m.SamplesPublished,
		m.PublishErrors,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates Metrics registered with reg. One-shot commands pass
// a private registry they never expose.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a private registry so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}
