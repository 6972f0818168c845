package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the segment studio.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           prometheus.Counter
	segmentMutationsTotal prometheus.Counter
	rejectionsTotal       *prometheus.CounterVec
	projectsSavedTotal    prometheus.Counter
	openSessions          prometheus.Gauge
	storedProjects        prometheus.Gauge
}

// New creates and registers Prometheus metrics for the studio.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studio_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studio_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	segmentMutationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studio_segment_mutations_total",
		Help: "Total number of applied segment, overlay and roster mutations",
	})
	rejectionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_rejections_total",
		Help: "Total number of rejected operations by reason",
	}, []string{"reason"})
	projectsSavedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studio_projects_saved_total",
		Help: "Total number of successful project saves",
	})
	openSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "studio_open_sessions",
		Help: "Number of projects currently open for editing",
	})
	storedProjects := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "studio_stored_projects",
		Help: "Number of projects in the backing store",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		segmentMutationsTotal,
		rejectionsTotal,
		projectsSavedTotal,
		openSessions,
		storedProjects,
	)

	return &Metrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		errorsTotal:           errorsTotal,
		segmentMutationsTotal: segmentMutationsTotal,
		rejectionsTotal:       rejectionsTotal,
		projectsSavedTotal:    projectsSavedTotal,
		openSessions:          openSessions,
		storedProjects:        storedProjects,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncMutations increments the applied mutation counter.
func (m *Metrics) IncMutations() {
	m.segmentMutationsTotal.Inc()
}

// IncRejections increments the rejection counter for reason
// (e.g. "permission", "capacity", "read_only").
func (m *Metrics) IncRejections(reason string) {
	m.rejectionsTotal.WithLabelValues(reason).Inc()
}

// IncProjectsSaved increments the saved projects counter.
func (m *Metrics) IncProjectsSaved() {
	m.projectsSavedTotal.Inc()
}

// SetOpenSessions sets the open sessions gauge.
func (m *Metrics) SetOpenSessions(n int) {
	m.openSessions.Set(float64(n))
}

// SetStoredProjects sets the stored projects gauge.
func (m *Metrics) SetStoredProjects(n int) {
	m.storedProjects.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
