package config

import (
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/booking"
)

// BookingConfig tunes the reservation engine.
type BookingConfig struct {
	InUseGrace    time.Duration // bookings starting within this window of now are refused while the station is occupied
	SearchWindow  time.Duration // default search length when no end is given
	HideCompleted bool          // drop Completed reservations from "my reservations"
	Loyalty       booking.LoyaltyPolicy
}

// LoadBookingConfig reads BOOKING_* and LOYALTY_* variables, falling back
// to the house rules.
func LoadBookingConfig() BookingConfig {
	def := booking.DefaultLoyaltyPolicy()
	cfg := BookingConfig{
		InUseGrace:    envDur("BOOKING_INUSE_GRACE", 5*time.Minute),
		SearchWindow:  envDur("BOOKING_SEARCH_WINDOW", 2*time.Hour),
		HideCompleted: envBool("BOOKING_HIDE_COMPLETED", true),
		Loyalty: booking.LoyaltyPolicy{
			RedemptionCost:    envInt("LOYALTY_REDEMPTION_COST", def.RedemptionCost),
			FreeHours:         envDur("LOYALTY_FREE_HOURS", def.FreeHours),
			MinRedeemDuration: envDur("LOYALTY_MIN_REDEEM_DURATION", def.MinRedeemDuration),
			AwardThreshold:    envDur("LOYALTY_AWARD_THRESHOLD", def.AwardThreshold),
			AwardPoints:       envInt("LOYALTY_AWARD_POINTS", def.AwardPoints),
		},
	}
	if cfg.InUseGrace < 0 {
		cfg.InUseGrace = 0
	}
	if cfg.SearchWindow <= 0 {
		cfg.SearchWindow = 2 * time.Hour
	}
	if cfg.Loyalty.RedemptionCost < 1 {
		cfg.Loyalty.RedemptionCost = def.RedemptionCost
	}
	return cfg
}
