package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_backend_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retention_backend_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retention_backend_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_backend_dataset_loads_total",
			Help: "Total number of warehouse dataset loads by result",
		},
		[]string{"dataset", "result"},
	)

	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retention_backend_dataset_load_duration_seconds",
			Help:    "Duration of warehouse dataset loads including retries",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"dataset"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "retention_backend_dataset_rows",
			Help: "Number of rows in the current dataset snapshot",
		},
		[]string{"dataset"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_backend_cache_requests_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	EngineErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_backend_engine_errors_total",
			Help: "Total number of metric computations that returned an error",
		},
		[]string{"operation"},
	)
)
