// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks inbound HTTP requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// ProviderOperationsTotal tracks provider operations by backend and outcome
	ProviderOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "provider",
			Name:      "operations_total",
			Help:      "Total number of provider operations by backend and outcome",
		},
		[]string{"provider", "operation", "status"},
	)

	// EventsRecordedTotal tracks audit events appended per event type
	EventsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "events",
			Name:      "recorded_total",
			Help:      "Total number of audit events recorded",
		},
		[]string{"event_type"},
	)

	// ChangeFeedPublishesTotal tracks change feed publishes by outcome
	ChangeFeedPublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "publishes_total",
			Help:      "Total number of change feed publishes",
		},
		[]string{"status"},
	)

	// CacheRequestsTotal tracks provider cache lookups by result
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Total number of provider cache lookups",
		},
		[]string{"result"},
	)
)
