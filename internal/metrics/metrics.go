package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compact_tool_calls_total",
		Help: "Tool invocations grouped by tool and outcome",
	}, []string{"tool", "status"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compact_tool_duration_seconds",
		Help:    "Duration of tool invocations",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})

	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compact_navigate_publish_total",
		Help: "Navigate Chat publishes grouped by outcome",
	}, []string{"status"})

	publishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compact_navigate_publish_duration_seconds",
		Help:    "Duration of Navigate Chat publishes, including login and streaming",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compact_http_requests_total",
		Help: "Total HTTP requests processed by the tool server",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compact_http_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Publish outcomes.
const (
	PublishSucceeded  = "succeeded"
	PublishIncomplete = "incomplete"
	PublishFailed     = "failed"
)

// ObserveToolCall records the duration and outcome of a tool call.
func ObserveToolCall(tool string, success bool, duration time.Duration) {
	if tool == "" {
		tool = "unknown"
	}
	status := "success"
	if !success {
		status = "failed"
	}
	toolCallsTotal.WithLabelValues(tool, status).Inc()
	toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// ObservePublish records a publish attempt.
func ObservePublish(status string, duration time.Duration) {
	publishTotal.WithLabelValues(status).Inc()
	publishDuration.Observe(duration.Seconds())
}

// ObserveHTTPRequest records a served HTTP request.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
