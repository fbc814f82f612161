package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shop is a gaming lounge location.  A shop owns its stations and
// tournaments and carries the default hourly rate used when seeding
// stations.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Address     – street address.
//  City        – city, used for browse filtering.
//  Country     – country, used for browse filtering.
//  PhoneNumber – optional contact number.
//  Email       – optional contact email.
//  HourlyRate  – base price per hour for new stations.
//  IsActive    – inactive shops are hidden from browse endpoints.
//  OwnerID     – optional user who owns the shop.
//  CreatedAt   – creation timestamp.
type Shop struct {
	ID          uint64          `json:"id"`           // shops.id
	Name        string          `json:"name"`         // shops.name
	Address     string          `json:"address"`      // shops.address
	City        string          `json:"city"`         // shops.city
	Country     string          `json:"country"`      // shops.country
	PhoneNumber *string         `json:"phone_number"` // shops.phone_number (nullable)
	Email       *string         `json:"email"`        // shops.email (nullable)
	HourlyRate  decimal.Decimal `json:"hourly_rate"`  // shops.hourly_rate
	IsActive    bool            `json:"is_active"`    // shops.is_active
	OwnerID     *uint64         `json:"owner_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"` // shops.created_at
}
