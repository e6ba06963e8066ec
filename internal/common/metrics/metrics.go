// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DraftRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_draft_requests_total",
			Help: "Total number of draft generation requests",
		},
		[]string{"result"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "outreach_generation_duration_seconds",
			Help: "Duration of external generation calls in seconds",
		},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_status_transitions_total",
			Help: "Total number of outreach status transitions",
		},
		[]string{"to"},
	)

	LockContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_lock_contention_total",
			Help: "Number of draft requests rejected because one was in flight",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_events_published_total",
			Help: "Total number of prospect change events published",
		},
		[]string{"kind"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "outreach_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"method", "path"},
	)
)
