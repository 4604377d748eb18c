// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors register with the default registry on package init, so callers
// only import the package and record values.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skincare"

// Recommendation outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeParseError      = "parse_error"
	OutcomeGenerationError = "generation_error"
)

// Task failure reasons.
const (
	ReasonClassification = "classification"
	ReasonTimeout        = "timeout"
	ReasonQueueFull      = "queue_full"
)

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts handled requests by route pattern, method and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "Total HTTP requests handled.",
}, []string{"route", "method", "status"})

// HTTPDuration tracks request latency in seconds by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

// ─── Recommendations ────────────────────────────────────────────────────────

// Recommendations counts recommendation requests by outcome.
var Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "recommendations_total",
	Help:      "Total recommendation requests by outcome.",
}, []string{"outcome"})

// RecommendationLatency tracks the time spent waiting on the text generator.
var RecommendationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "recommendation_latency_seconds",
	Help:      "Text generation latency for recommendations in seconds.",
	Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
})

// ─── Tasks ──────────────────────────────────────────────────────────────────

// TasksSubmitted counts accepted uploads.
var TasksSubmitted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tasks_submitted_total",
	Help:      "Total classification tasks submitted.",
})

// TasksCompleted counts tasks that reached the completed state.
var TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tasks_completed_total",
	Help:      "Total classification tasks completed.",
})

// TasksFailed counts tasks that reached the failed state, by reason.
var TasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tasks_failed_total",
	Help:      "Total classification tasks failed.",
}, []string{"reason"})

// TasksActive tracks classifications currently executing.
var TasksActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks_active",
	Help:      "Number of classifications currently executing.",
})

// TaskDuration tracks classification duration in seconds.
var TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "task_duration_seconds",
	Help:      "Classification duration in seconds.",
	Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
})

// CleanupFailures counts temporary upload files that could not be removed.
var CleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "task_cleanup_failures_total",
	Help:      "Temporary upload files that could not be deleted.",
})

// StoredTasks tracks records held by the in-memory task store.
var StoredTasks = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "stored_tasks",
	Help:      "Number of task records held in memory.",
})
