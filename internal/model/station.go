package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StationType is the kind of hardware a station offers.
type StationType string

const (
	StationPC          StationType = "PC"
	StationPlayStation StationType = "PlayStation"
	StationXbox        StationType = "Xbox"
)

// Valid reports whether t is one of the known station types.
func (t StationType) Valid() bool {
	switch t {
	case StationPC, StationPlayStation, StationXbox:
		return true
	}
	return false
}

// StationStatus is the administrative status stored on a station.  The
// status shown to customers is derived from reservations and never written
// back.
type StationStatus string

const (
	StationAvailable   StationStatus = "Available"
	StationReserved    StationStatus = "Reserved"
	StationInUse       StationStatus = "InUse"
	StationMaintenance StationStatus = "Maintenance"
)

// Station is a bookable gaming seat inside a shop.
type Station struct {
	ID             uint64          `json:"id"`
	ShopID         uint64          `json:"shop_id"`
	Name           string          `json:"name"`
	Type           StationType     `json:"type"`
	Status         StationStatus   `json:"status"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	Specifications *string         `json:"specifications,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StationView is a station with its derived live status, as returned by the
// listing and search operations.
type StationView struct {
	Station
	ShopName        string        `json:"shop_name"`
	CurrentStatus   StationStatus `json:"current_status"`
	IsAvailable     bool          `json:"is_available"`
	NextAvailableAt *time.Time    `json:"next_available_time"`
}
