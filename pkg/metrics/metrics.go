// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PipelineDuration tracks end-to-end message handling duration.
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_handle_duration_seconds",
			Help:    "Message handling duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"intent"},
	)

	// MessagesTotal tracks handled messages by classified intent.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_messages_total",
			Help: "Total messages handled, by classified intent",
		},
		[]string{"intent"},
	)

	// EscalationsTotal tracks human handoffs by triggering rule.
	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_escalations_total",
			Help: "Total escalations to a human agent, by rule",
		},
		[]string{"rule"},
	)

	// IntentConfidence observes the classifier's top confidence.
	IntentConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_confidence",
			Help:    "Confidence of the winning intent",
			Buckets: []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
		[]string{"intent"},
	)

	// BackendLookupDuration tracks backend lookup latency.
	BackendLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_lookup_duration_seconds",
			Help:    "Backend lookup duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"domain", "status"},
	)

	// BackendLookupFailures tracks failed or timed-out lookups.
	BackendLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_lookup_failures_total",
			Help: "Total failed backend lookups",
		},
		[]string{"domain"},
	)

	// ActiveSessions tracks live conversation contexts.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "context_active_sessions",
			Help: "Number of non-expired conversation contexts",
		},
	)

	// SessionsSweptTotal tracks contexts removed by the reaper.
	SessionsSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "context_sessions_swept_total",
			Help: "Total expired conversation contexts removed",
		},
	)

	// AnalyticsPublishFailures tracks dropped analytics events.
	AnalyticsPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_publish_failures_total",
			Help: "Total analytics events that could not be published",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordHandled records metrics for one handled message.
func RecordHandled(intent string, confidence, duration float64) {
	PipelineDuration.WithLabelValues(intent).Observe(duration)
	MessagesTotal.WithLabelValues(intent).Inc()
	IntentConfidence.WithLabelValues(intent).Observe(confidence)
}

// RecordLookup records metrics for one backend lookup.
func RecordLookup(domain, status string, duration float64) {
	BackendLookupDuration.WithLabelValues(domain, status).Observe(duration)
	if status == "error" {
		BackendLookupFailures.WithLabelValues(domain).Inc()
	}
}
