package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the logging
// service.
type Metrics struct {
	RecordsStored   *prometheus.CounterVec // labels: kind={rain,runway,forecast,metar}
	InputRejected   *prometheus.CounterVec // labels: kind
	StoreErrors     *prometheus.CounterVec // labels: op
	RainEvents      prometheus.Counter
	WetEpisodes     *prometheus.CounterVec // labels: status={closed,open}
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airfieldwx",
			Name:      "records_stored_total",
			Help:      "Records written to the event store by kind.",
		}, []string{"kind"}),
		InputRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airfieldwx",
			Name:      "input_rejected_total",
			Help:      "Entries rejected for formatting errors by kind.",
		}, []string{"kind"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airfieldwx",
			Name:      "store_errors_total",
			Help:      "Event store failures by operation.",
		}, []string{"op"}),
		RainEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airfieldwx",
			Name:      "rain_events_computed_total",
			Help:      "Rainfall events produced by the segmenter.",
		}),
		WetEpisodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airfieldwx",
			Name:      "wet_episodes_computed_total",
			Help:      "Wet-runway episodes produced by the splitter by status.",
		}, []string{"status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "airfieldwx",
			Name:      "http_request_duration_seconds",
			Help:      "REST request duration by route.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
	}

	prometheus.MustRegister(
		m.RecordsStored,
		m.InputRejected,
		m.StoreErrors,
		m.RainEvents,
		m.WetEpisodes,
		m.RequestDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsStored:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "airfieldwx", Name: "records_stored_total"}, []string{"kind"}),
		InputRejected:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "airfieldwx", Name: "input_rejected_total"}, []string{"kind"}),
		StoreErrors:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "airfieldwx", Name: "store_errors_total"}, []string{"op"}),
		RainEvents:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "airfieldwx", Name: "rain_events_computed_total"}),
		WetEpisodes:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "airfieldwx", Name: "wet_episodes_computed_total"}, []string{"status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "airfieldwx", Name: "http_request_duration_seconds"}, []string{"route"}),
	}
}
