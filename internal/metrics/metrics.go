package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// Outbound HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business metrics
	quoteRequests   *prometheus.CounterVec
	quoteCache      *prometheus.CounterVec
	simulations     *prometheus.CounterVec
	skipped         *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksim_http_requests_total",
				Help: "Total number of outbound HTTP requests to data providers",
			},
			[]string{"host", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksim_http_request_duration_seconds",
				Help:    "Outbound HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)

	// Business metrics
	r.quoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksim_quote_requests_total",
			Help: "Total number of price lookups by source and outcome",
		},
		[]string{"source", "status"},
	)
	r.quoteCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksim_quote_cache_total",
			Help: "Quote cache lookups by result",
		},
		[]string{"result"},
	)
	r.simulations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksim_simulations_total",
			Help: "Total number of simulations computed",
		},
		[]string{"kind"},
	)
	r.skipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksim_skipped_total",
			Help: "Tickers or purchase periods skipped for missing data",
		},
		[]string{"kind"},
	)
	r.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocksim_command_duration_seconds",
			Help:    "Command duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"command", "status"},
	)

	reg.MustRegister(r.quoteRequests)
	reg.MustRegister(r.quoteCache)
	reg.MustRegister(r.simulations)
	reg.MustRegister(r.skipped)
	reg.MustRegister(r.commandDuration)

	return r
}

// RecordRequest records metrics for an outbound HTTP request.
func (r *Registry) RecordRequest(host string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(host, statusToString(status)).Inc()
	r.httpRequestDuration.WithLabelValues(host).Observe(duration)
}

// RecordQuote records a price lookup.
func (r *Registry) RecordQuote(source, status string) {
	r.quoteRequests.WithLabelValues(source, status).Inc()
}

// RecordCache records a cache hit or miss.
func (r *Registry) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.quoteCache.WithLabelValues(result).Inc()
}

// RecordSimulation records a computed result.
func (r *Registry) RecordSimulation(kind string) {
	r.simulations.WithLabelValues(kind).Inc()
}

// RecordSkipped records n skipped tickers or periods.
func (r *Registry) RecordSkipped(kind string, n int) {
	if n > 0 {
		r.skipped.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordCommand records a command completion.
func (r *Registry) RecordCommand(command, status string, duration float64) {
	r.commandDuration.WithLabelValues(command, status).Observe(duration)
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
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
	case status > 0:
		return "1xx"
	default:
		return "error"
	}
}
