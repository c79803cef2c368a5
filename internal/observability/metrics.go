package observability

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSuccess  = "success"
	OutcomeCacheHit = "cache_hit"
	OutcomeError    = "error"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memquery_queries_total",
			Help: "Total number of queries by outcome.",
		},
		[]string{"outcome"},
	)

	queryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memquery_query_errors_total",
			Help: "Failed queries by error code.",
		},
		[]string{"code"},
	)

	queryDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memquery_query_duration_seconds",
			Help:    "Query latency by outcome.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 10),
		},
		[]string{"outcome"},
	)

	cacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memquery_cache_hits_total",
			Help: "Queries answered from the result cache.",
		},
	)

	loadedRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memquery_loaded_rows",
			Help: "Rows held by the engine after the last load.",
		},
	)
)

func init() {
	prometheus.MustRegister(queriesTotal, queryErrorsTotal, queryDurationSeconds, cacheHitsTotal, loadedRows)
}
