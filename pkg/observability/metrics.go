package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tool metrics
	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindweave_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindweave_tool_call_duration_seconds",
			Help:    "Tool call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Workspace metrics
	thoughtsAppendedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindweave_thoughts_appended_total",
			Help: "Total number of thoughts appended, by reasoning mode",
		},
		[]string{"mode"},
	)

	sessionsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindweave_sessions_deleted_total",
			Help: "Total number of sessions deleted",
		},
		[]string{"reason"}, // explicit, retention
	)

	// Retention metrics
	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mindweave_sweep_duration_seconds",
			Help:    "Retention sweep duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	sweepFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindweave_sweep_failures_total",
			Help: "Total number of per-session deletion failures during sweeps",
		},
	)

	// System metrics
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mindweave_active_sessions",
			Help: "Number of persisted sessions",
		},
	)

	initOnce sync.Once
)

// InitMetrics initializes Prometheus metrics
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			toolCallsTotal,
			toolCallDuration,
			thoughtsAppendedTotal,
			sessionsDeletedTotal,
			sweepDuration,
			sweepFailuresTotal,
			activeSessions,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordToolCall records tool call metrics
func RecordToolCall(tool, status string, duration time.Duration) {
	toolCallsTotal.WithLabelValues(tool, status).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordThoughtAppended records one appended thought
func RecordThoughtAppended(mode string) {
	thoughtsAppendedTotal.WithLabelValues(mode).Inc()
}

// RecordSessionDeleted records a session deletion
func RecordSessionDeleted(reason string) {
	sessionsDeletedTotal.WithLabelValues(reason).Inc()
}

// RecordSweep records the outcome of one retention sweep
func RecordSweep(duration time.Duration, deleted, failed int) {
	sweepDuration.Observe(duration.Seconds())
	if deleted > 0 {
		sessionsDeletedTotal.WithLabelValues("retention").Add(float64(deleted))
	}
	if failed > 0 {
		sweepFailuresTotal.Add(float64(failed))
	}
}

// SetActiveSessions sets the persisted sessions gauge
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}
