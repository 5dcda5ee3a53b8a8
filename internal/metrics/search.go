package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "geolocator"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of provider search requests",
		},
		[]string{"provider", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_request_duration_seconds",
			Help:      "Provider search round trip in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_errors_total",
			Help:      "Total search errors by kind",
		},
		[]string{"provider", "error_type"},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_returned",
			Help:      "Number of filled result slots per published search",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10, 25, 50},
		},
		[]string{"provider"},
	)

	SearchStaleDiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_stale_discarded_total",
			Help:      "Responses dropped because a newer search superseded them",
		},
	)

	QuotaUnitsRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quota_units_remaining",
			Help:      "Remaining provider quota units",
		},
		[]string{"provider", "period"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search response cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live interaction sessions",
		},
	)

	SessionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions removed after sitting idle",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchErrorsTotal)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(SearchStaleDiscardedTotal)
	prometheus.MustRegister(QuotaUnitsRemaining)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(SessionsEvictedTotal)
	searchMetricsRegistered = true
}
