// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lounge",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lounge",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// ReservationOutcomes counts lifecycle attempts: op is create, cancel or
	// complete; result is ok or the error class.
	ReservationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lounge",
		Name:      "reservation_operations_total",
		Help:      "Reservation lifecycle operations by outcome.",
	}, []string{"op", "result"})

	LoyaltyPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lounge",
		Name:      "loyalty_points_total",
		Help:      "Loyalty points moved, by direction (debited, awarded).",
	}, []string{"direction"})

	TournamentRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lounge",
		Name:      "tournament_registrations_total",
		Help:      "Tournament registration attempts by outcome.",
	}, []string{"result"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lounge",
		Name:      "events_published_total",
		Help:      "Domain events handed to the broker, by routing key and result.",
	}, []string{"key", "result"})
)
