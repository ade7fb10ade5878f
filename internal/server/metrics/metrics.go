// Package metrics declares the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultError    = "error"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshare_uploads_total",
			Help: "Upload pipeline runs by outcome.",
		},
		[]string{"result"},
	)

	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "studyshare_upload_bytes",
		Help:    "Size of accepted uploads in bytes.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshare_file_queries_total",
			Help: "File listing queries by outcome.",
		},
		[]string{"result"},
	)

	ProfileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyshare_profile_cache_hits_total",
		Help: "School lookups answered from the profile cache.",
	})

	ProfileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyshare_profile_cache_misses_total",
		Help: "School lookups that went to the database.",
	})

	SweptUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyshare_swept_pending_uploads_total",
		Help: "Stale pending uploads removed by the sweeper.",
	})

	GRPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshare_grpc_requests_total",
			Help: "gRPC requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	GRPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyshare_grpc_request_duration_seconds",
			Help:    "gRPC request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshare_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyshare_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
