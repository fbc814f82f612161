// Package queue defines the domain events exchanged over RabbitMQ together
// with the publisher and the audit-log consumer.
package queue

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys on the events exchange.
const (
	KeyReservationCreated   = "reservation.created"
	KeyReservationCancelled = "reservation.cancelled"
	KeyReservationCompleted = "reservation.completed"
	KeyTournamentRegistered = "tournament.registered"
)

// ReservationEvent is published after a reservation lifecycle step commits.
// It carries enough context for consumers to log or notify without querying
// the primary database.
type ReservationEvent struct {
	ReservationID uint64          `json:"reservation_id"`
	UserID        uint64          `json:"user_id"`
	StationID     uint64          `json:"station_id"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Status        string          `json:"status"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PointsDebited int             `json:"points_debited,omitempty"`
	PointsAwarded int             `json:"points_awarded,omitempty"`
	NewBalance    *int            `json:"new_balance,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// TournamentRegisteredEvent is published when a user joins a tournament.
type TournamentRegisteredEvent struct {
	RegistrationID uint64          `json:"registration_id"`
	TournamentID   uint64          `json:"tournament_id"`
	UserID         uint64          `json:"user_id"`
	PaymentAmount  decimal.Decimal `json:"payment_amount"`
	Participants   int             `json:"participants"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
