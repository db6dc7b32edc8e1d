package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mimir_query_requests_total",
		Help: "Total query engine requests by endpoint",
	}, []string{"endpoint"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mimir_query_duration_ms",
		Help:    "Query request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"endpoint"})
	QueryEmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mimir_query_empty_results_total",
		Help: "Total query requests that returned zero features",
	}, []string{"endpoint"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mimir_cache_hits_total",
		Help: "Total result-cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mimir_cache_misses_total",
		Help: "Total result-cache misses",
	})

	BackendRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mimir_backend_requests_total",
		Help: "Total backend adapter requests by operation",
	}, []string{"operation"})
	BackendErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mimir_backend_errors_total",
		Help: "Total backend adapter errors by operation and class",
	}, []string{"operation", "class"})
	BackendDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mimir_backend_duration_ms",
		Help:    "Backend adapter call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"operation"})

	BulkDocsIndexedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mimir_bulk_docs_indexed_total",
		Help: "Total documents successfully indexed by the bulk loader",
	}, []string{"index"})
	BulkDocsFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mimir_bulk_docs_failed_total",
		Help: "Total documents that failed indexing by error class",
	}, []string{"class"})
	BulkBatchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mimir_bulk_batch_duration_ms",
		Help:    "Bulk batch submit duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	BulkRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mimir_bulk_retries_total",
		Help: "Total bulk batch retry attempts",
	})

	GeofinderMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mimir_geofinder_misses_total",
		Help: "Total Attach calls that found no enclosing admin",
	})

	IndexPublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mimir_index_publish_total",
		Help: "Total index-manager publish outcomes",
	}, []string{"dataset", "outcome"})
	IndexReaperDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mimir_index_reaper_deleted_total",
		Help: "Total dangling concrete indices removed by the reaper",
	})
)

func init() {
	prometheus.MustRegister(
		QueryRequestsTotal,
		QueryDurationMs,
		QueryEmptyResultsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		BackendRequestsTotal,
		BackendErrorsTotal,
		BackendDurationMs,
		BulkDocsIndexedTotal,
		BulkDocsFailedTotal,
		BulkBatchDurationMs,
		BulkRetriesTotal,
		GeofinderMissesTotal,
		IndexPublishTotal,
		IndexReaperDeletedTotal,
	)
}

// Handler exposes the registered metrics for a Prometheus scrape; the
// caller mounts it at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
