package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contact_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_messages_created_total",
			Help: "Total contact messages accepted",
		},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_validation_failures_total",
			Help: "Total rejected submissions",
		},
		[]string{"rule"},
	)

	MessagesUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_messages_updated_total",
			Help: "Total status updates applied",
		},
	)

	MessagesArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_messages_archived_total",
			Help: "Total messages archived",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contact_store_latency_seconds",
			Help:    "Document store operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"op"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_store_errors_total",
			Help: "Total document store failures",
		},
		[]string{"op"},
	)
)
