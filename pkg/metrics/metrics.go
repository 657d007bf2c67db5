// Package metrics provides Prometheus metrics for the fare aggregation
// and monitoring system.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SearchesTotal is a counter of aggregate searches by outcome.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysniper_searches_total",
			Help: "Total number of aggregate searches",
		},
		[]string{"status"},
	)

	// SearchDuration is a histogram of aggregate search duration.
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skysniper_search_duration_seconds",
			Help:    "Duration of aggregate searches across all sources",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	// SourceListingsTotal is a counter of raw listings fetched per source.
	SourceListingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysniper_source_listings_total",
			Help: "Total number of raw listings fetched from sources",
		},
		[]string{"source"},
	)

	// SourceFailuresTotal is a counter of failed source fetches.
	SourceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysniper_source_failures_total",
			Help: "Total number of failed source fetches",
		},
		[]string{"source", "reason"},
	)

	// ListingsDroppedTotal is a counter of listings dropped during normalization.
	ListingsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysniper_listings_dropped_total",
			Help: "Total number of raw listings dropped by the normalizer",
		},
		[]string{"source"},
	)

	// MonitorCyclesTotal is a counter of monitor check cycles by outcome.
	MonitorCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysniper_monitor_cycles_total",
			Help: "Total number of monitor check cycles",
		},
		[]string{"outcome"},
	)

	// AlertsTotal is a counter of emitted price alerts by reason.
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysniper_alerts_total",
			Help: "Total number of price alerts emitted",
		},
		[]string{"reason"},
	)

	// CheapestPrice is a gauge of the last observed cheapest fare per route.
	CheapestPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "skysniper_cheapest_price",
			Help: "Last observed cheapest fare for a monitored route, in IRR",
		},
		[]string{"origin", "destination", "date"},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		SearchesTotal,
		SearchDuration,
		SourceListingsTotal,
		SourceFailuresTotal,
		ListingsDroppedTotal,
		MonitorCyclesTotal,
		AlertsTotal,
		CheapestPrice,
	)
}

// ServeHTTP starts a metrics HTTP server on the given address.
func ServeHTTP(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordSearch records the outcome and duration of one aggregate search.
func RecordSearch(status string, duration time.Duration) {
	SearchesTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(duration.Seconds())
}

// RecordSourceListings records successfully fetched listings for a source.
func RecordSourceListings(source string, count int) {
	SourceListingsTotal.WithLabelValues(source).Add(float64(count))
}

// RecordSourceFailure records a failed source fetch.
func RecordSourceFailure(source, reason string) {
	SourceFailuresTotal.WithLabelValues(source, reason).Inc()
}

// RecordDroppedListing records a listing rejected by the normalizer.
func RecordDroppedListing(source string) {
	ListingsDroppedTotal.WithLabelValues(source).Inc()
}

// RecordMonitorCycle records the outcome of one monitor cycle.
func RecordMonitorCycle(outcome string) {
	MonitorCyclesTotal.WithLabelValues(outcome).Inc()
}

// RecordAlert records an emitted alert.
func RecordAlert(reason string) {
	AlertsTotal.WithLabelValues(reason).Inc()
}

// RecordCheapestPrice records the cheapest observed fare for a route.
func RecordCheapestPrice(origin, destination, date string, price float64) {
	CheapestPrice.WithLabelValues(origin, destination, date).Set(price)
}
