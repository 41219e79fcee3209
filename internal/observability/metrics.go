package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmockup",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hwmockup",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	marksInstalled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmockup",
			Subsystem: "cabinet",
			Name:      "marks_installed_total",
			Help:      "Marks installed into a cabinet store, by operation.",
		},
		[]string{"cabinet", "op"},
	)
	marksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmockup",
			Subsystem: "cabinet",
			Name:      "marks_dropped_total",
			Help:      "Batch entries dropped during replace-all validation.",
		},
		[]string{"cabinet"},
	)
	reconcilePushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmockup",
			Subsystem: "panel",
			Name:      "reconcile_pushes_total",
			Help:      "Full-replace reconcile pushes from the panel, by outcome.",
		},
		[]string{"cabinet", "outcome"},
	)
	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hwmockup",
			Subsystem: "panel",
			Name:      "reconcile_push_duration_seconds",
			Help:      "Reconcile push duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"cabinet", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			marksInstalled,
			marksDropped,
			reconcilePushes,
			reconcileDuration,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordMarksInstalled(cabinet, op string, count int) {
	RegisterMetrics()
	marksInstalled.WithLabelValues(cabinet, op).Add(float64(count))
}

func RecordMarksDropped(cabinet string, count int) {
	RegisterMetrics()
	marksDropped.WithLabelValues(cabinet).Add(float64(count))
}

func RecordReconcilePush(cabinet, outcome string, duration time.Duration) {
	RegisterMetrics()
	reconcilePushes.WithLabelValues(cabinet, outcome).Inc()
	reconcileDuration.WithLabelValues(cabinet, outcome).Observe(duration.Seconds())
}
