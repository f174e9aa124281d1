package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
// Recording methods are safe to call on a nil *Registry, which lets
// pipeline components run without metrics in tests and in the CLI.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	relayRequests   *prometheus.CounterVec
	relayDuration   prometheus.Histogram
	classifications *prometheus.CounterVec
	aggregations    *prometheus.CounterVec
	snapshots       *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.relayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundboard_relay_requests_total",
			Help: "Total number of relayed upstream requests by outcome",
		},
		[]string{"outcome"},
	)
	r.relayDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fundboard_relay_duration_seconds",
			Help:    "Upstream request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)
	r.classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundboard_classifications_total",
			Help: "Total number of ticker classifications by category",
		},
		[]string{"category"},
	)
	r.aggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundboard_aggregations_total",
			Help: "Total number of aggregation runs by result",
		},
		[]string{"result"},
	)
	r.snapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundboard_snapshots_total",
			Help: "Total number of snapshots served by data source",
		},
		[]string{"source"},
	)

	reg.MustRegister(r.relayRequests)
	reg.MustRegister(r.relayDuration)
	reg.MustRegister(r.classifications)
	reg.MustRegister(r.aggregations)
	reg.MustRegister(r.snapshots)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Dec()
}

// RecordRelay records one upstream call and its outcome.
func (r *Registry) RecordRelay(outcome string, duration float64) {
	if r == nil {
		return
	}
	r.relayRequests.WithLabelValues(outcome).Inc()
	r.relayDuration.Observe(duration)
}

// RecordClassification records the category a ticker was classified as.
func (r *Registry) RecordClassification(category string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(category).Inc()
}

// RecordAggregation records an aggregation result: complete, partial or failed.
func (r *Registry) RecordAggregation(result string) {
	if r == nil {
		return
	}
	r.aggregations.WithLabelValues(result).Inc()
}

// RecordSnapshot records a served snapshot by source: upstream or synthetic.
func (r *Registry) RecordSnapshot(source string) {
	if r == nil {
		return
	}
	r.snapshots.WithLabelValues(source).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
