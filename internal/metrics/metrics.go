package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "sitescope"

// Registry owns the collectors. It satisfies fetch.Observer.
type Registry struct {
	registry *prometheus.Registry

	fetches          *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	analyses         *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	assistant        *prometheus.CounterVec
}

// New creates a Registry with Go runtime and process collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetches_total",
			Help:      "Outbound requests by kind (page, robots, CSS, JS) and outcome.",
		}, []string{"kind", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Outbound request latency by kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "analyses_total",
			Help:      "Finished analyses by final state.",
		}, []string{"state"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		assistant: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assistant_requests_total",
			Help:      "Assistant calls by HTTP status returned to the caller.",
		}, []string{"status"}),
	}
	reg.MustRegister(r.fetches, r.fetchDuration, r.analyses, r.analysisDuration, r.assistant)
	return r
}

// ObserveFetch records one outbound request.
func (r *Registry) ObserveFetch(kind, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(kind, outcome).Inc()
	if elapsed > 0 {
		r.fetchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

// ObserveAnalysis records a finished analysis and its final state.
func (r *Registry) ObserveAnalysis(state string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(state).Inc()
	r.analysisDuration.Observe(elapsed.Seconds())
}

// ObserveAssistant records an assistant reply status code.
func (r *Registry) ObserveAssistant(status int) {
	if r == nil {
		return
	}
	r.assistant.WithLabelValues(http.StatusText(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
