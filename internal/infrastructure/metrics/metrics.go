package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson",
			Subsystem: "chat_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lesson",
			Subsystem: "chat_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Rooms
	RoomsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson",
			Subsystem: "chat_api",
			Name:      "rooms_created_total",
			Help:      "Total chat rooms created",
		},
		[]string{"backend"},
	)

	// Messages
	MessagesAppendedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson",
			Subsystem: "chat_api",
			Name:      "messages_appended_total",
			Help:      "Total messages appended to room windows",
		},
		[]string{"sender", "backend"},
	)

	// Provider errors
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson",
			Subsystem: "chat_api",
			Name:      "provider_errors_total",
			Help:      "Total provider exchange failures",
		},
		[]string{"backend", "error_type"},
	)

	// Exchange duration
	ExchangeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lesson",
			Subsystem: "chat_api",
			Name:      "exchange_duration_seconds",
			Help:      "AI exchange duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)
)

// RecordRequest records an HTTP request with duration.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordRoomCreated records a new room on the given backend (live or demo).
func RecordRoomCreated(backend string) {
	RoomsCreatedTotal.WithLabelValues(backend).Inc()
}

// RecordMessageAppended records an appended message.
func RecordMessageAppended(sender, backend string) {
	MessagesAppendedTotal.WithLabelValues(sender, backend).Inc()
}

// RecordProviderError records a failed exchange.
func RecordProviderError(backend, errorType string) {
	ProviderErrorsTotal.WithLabelValues(backend, errorType).Inc()
}

// RecordExchangeDuration records the duration of an AI exchange.
func RecordExchangeDuration(backend string, durationSec float64) {
	ExchangeDuration.WithLabelValues(backend).Observe(durationSec)
}
