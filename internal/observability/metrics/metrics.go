package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vsurvey_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vsurvey_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	assignmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vsurvey_assignments_created_total",
		Help: "Count of survey assignments created",
	})

	assignmentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vsurvey_assignments_skipped_total",
		Help: "Count of assignment requests skipped because the pair was already assigned",
	})

	duplicatesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vsurvey_duplicate_assignments_removed_total",
		Help: "Count of duplicate assignments removed by the maintenance sweep",
	})

	deletionOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vsurvey_deletion_operations_total",
		Help: "Count of cascading deletion operations by entity and result",
	}, []string{"entity", "result"})

	activeFeeds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vsurvey_active_response_feeds",
		Help: "Number of open live response feed connections",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAssignments records newly created and skipped assignments
func ObserveAssignments(created, skipped int) {
	assignmentsCreated.Add(float64(created))
	assignmentsSkipped.Add(float64(skipped))
}

// ObserveDuplicatesRemoved records removals from the maintenance sweep
func ObserveDuplicatesRemoved(count int) {
	duplicatesRemoved.Add(float64(count))
}

// ObserveDeletion increments the deletion counter for an entity and result
func ObserveDeletion(entity, result string) {
	deletionOperations.WithLabelValues(entity, result).Inc()
}

// FeedOpened increments the live feed gauge
func FeedOpened() {
	activeFeeds.Inc()
}

// FeedClosed decrements the live feed gauge
func FeedClosed() {
	activeFeeds.Dec()
}
