package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Occupancy engine
	RentalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_transitions_total",
			Help: "Rental open/close/delete attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)

	OccupancyDriftBoxes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "occupancy_drift_boxes",
			Help: "Boxes whose occupied flag disagreed with active rentals at the last reconciliation",
		},
	)

	// Post-commit effects
	EffectDeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effect_delivery_failures_total",
			Help: "Side effects that could not be delivered",
		},
		[]string{"effect"},
	)

	EffectQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "effect_queue_dropped_total",
			Help: "Effect jobs dropped because the queue was full or closed",
		},
	)

	// API
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

// RecordTransition counts an engine operation. err == nil is a success.
func RecordTransition(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	RentalTransitions.WithLabelValues(operation, outcome).Inc()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
