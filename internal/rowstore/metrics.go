package rowstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 注册到默认 registry，由 /metrics 暴露
var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipocaflix_rowstore_requests_total",
		Help: "Row store HTTP calls by table and final outcome (ok/error).",
	}, []string{"table", "outcome"})

	metricCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipocaflix_rowstore_cache_total",
		Help: "Row store cache lookups: hit, miss, or stale fallback after a failed fetch.",
	}, []string{"result"})

	metricRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipocaflix_rowstore_retries_total",
		Help: "Row store attempts beyond the first, per table.",
	}, []string{"table"})

	metricRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipocaflix_rowstore_request_duration_seconds",
		Help:    "Duration of a single row store HTTP attempt in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)
