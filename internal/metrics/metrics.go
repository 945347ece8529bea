// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchRequestsTotal         *prometheus.CounterVec
	fetchRetriesTotal          *prometheus.CounterVec
	papersFetchedTotal         *prometheus.CounterVec
	papersKeptTotal            *prometheus.CounterVec
	snapshotWritesTotal        *prometheus.CounterVec
	snapshotPapers             prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arxiv_fetch_requests_total",
				Help: "Total number of upstream API requests, labeled by category and status.",
			},
			[]string{"category", "status"},
		)

		fetchRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arxiv_fetch_retries_total",
				Help: "Total number of upstream request retries, labeled by category.",
			},
			[]string{"category"},
		)

		papersFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arxiv_papers_fetched_total",
				Help: "Total raw entries fetched from upstream, labeled by category.",
			},
			[]string{"category"},
		)

		papersKeptTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arxiv_papers_kept_total",
				Help: "Total entries kept after window filtering, labeled by category.",
			},
			[]string{"category"},
		)

		snapshotWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arxiv_snapshot_writes_total",
				Help: "Total snapshot write attempts, labeled by status.",
			},
			[]string{"status"},
		)

		snapshotPapers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "arxiv_snapshot_papers",
				Help: "Number of papers in the most recently written snapshot.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// ObserveFetchRequest counts one upstream API request outcome.
func ObserveFetchRequest(category, status string) {
	if fetchRequestsTotal == nil {
		return
	}
	fetchRequestsTotal.WithLabelValues(category, status).Inc()
}

// IncFetchRetry counts one upstream retry.
func IncFetchRetry(category string) {
	if fetchRetriesTotal == nil {
		return
	}
	fetchRetriesTotal.WithLabelValues(category).Inc()
}

// AddPapersFetched counts raw entries retrieved for a category.
func AddPapersFetched(category string, n int) {
	if papersFetchedTotal == nil {
		return
	}
	papersFetchedTotal.WithLabelValues(category).Add(float64(n))
}

// AddPapersKept counts windowed entries retained for a category.
func AddPapersKept(category string, n int) {
	if papersKeptTotal == nil {
		return
	}
	papersKeptTotal.WithLabelValues(category).Add(float64(n))
}

// ObserveSnapshotWrite records one snapshot write attempt and, on success,
// the snapshot size.
func ObserveSnapshotWrite(status string, papers int) {
	if snapshotWritesTotal == nil {
		return
	}
	snapshotWritesTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		snapshotPapers.Set(float64(papers))
	}
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
