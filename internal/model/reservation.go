package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus tracks a reservation through its lifecycle.  Pending and
// Active are part of the stored vocabulary but no operation produces them.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "Pending"
	ReservationConfirmed ReservationStatus = "Confirmed"
	ReservationActive    ReservationStatus = "Active"
	ReservationCompleted ReservationStatus = "Completed"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

// Reservation records a user's booking of one station for the half-open
// interval [StartTime, EndTime).
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who made the reservation.
//  StationID  – station being reserved.
//  StartTime  – inclusive start (UTC).
//  EndTime    – exclusive end (UTC), always after StartTime.
//  Status     – lifecycle state.
//  TotalPrice – price charged after free hours.
//  Notes      – optional free text from the customer.
//  CreatedAt  – creation timestamp.
type Reservation struct {
	ID         uint64            `json:"id"`          // reservations.id
	UserID     uint64            `json:"user_id"`     // reservations.user_id
	StationID  uint64            `json:"station_id"`  // reservations.station_id
	StartTime  time.Time         `json:"start_time"`  // reservations.start_time
	EndTime    time.Time         `json:"end_time"`    // reservations.end_time
	Status     ReservationStatus `json:"status"`      // reservations.status
	TotalPrice decimal.Decimal   `json:"total_price"` // reservations.total_price
	Notes      *string           `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"` // reservations.created_at
}

// Duration is EndTime minus StartTime.
func (r Reservation) Duration() time.Duration { return r.EndTime.Sub(r.StartTime) }

// ReservationDetail joins a reservation with the station and shop names for
// the "my reservations" listing.
type ReservationDetail struct {
	Reservation
	StationName string      `json:"station_name"`
	StationType StationType `json:"station_type"`
	ShopID      uint64      `json:"shop_id"`
	ShopName    string      `json:"shop_name"`
}
