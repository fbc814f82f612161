package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TournamentStatus is the lifecycle of a tournament.
type TournamentStatus string

const (
	TournamentUpcoming         TournamentStatus = "Upcoming"
	TournamentRegistrationOpen TournamentStatus = "RegistrationOpen"
	TournamentInProgress       TournamentStatus = "InProgress"
	TournamentCompleted        TournamentStatus = "Completed"
	TournamentCancelled        TournamentStatus = "Cancelled"
)

var tournamentStatuses = []TournamentStatus{
	TournamentUpcoming, TournamentRegistrationOpen, TournamentInProgress,
	TournamentCompleted, TournamentCancelled,
}

// ParseTournamentStatus matches s case-insensitively.
func ParseTournamentStatus(s string) (TournamentStatus, bool) {
	for _, st := range tournamentStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Tournament is a competitive event hosted by a shop.
type Tournament struct {
	ID                   uint64           `json:"id"`
	ShopID               uint64           `json:"shop_id"`
	ShopName             string           `json:"shop_name,omitempty"`
	Name                 string           `json:"name"`
	Game                 string           `json:"game"`
	Description          *string          `json:"description,omitempty"`
	StartDate            time.Time        `json:"start_date"`
	RegistrationDeadline time.Time        `json:"registration_deadline"`
	MaxParticipants      int              `json:"max_participants"`
	CurrentParticipants  int              `json:"current_participants"`
	EntryFee             decimal.Decimal  `json:"entry_fee"`
	PrizePool            decimal.Decimal  `json:"prize_pool"`
	Status               TournamentStatus `json:"status"`
	ImageURL             *string          `json:"image_url,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
}

// Full reports whether the participant cap has been reached.
func (t Tournament) Full() bool { return t.CurrentParticipants >= t.MaxParticipants }

// RegistrationStatus is the state of a single tournament entry.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "Pending"
	RegistrationConfirmed RegistrationStatus = "Confirmed"
	RegistrationCancelled RegistrationStatus = "Cancelled"
)

// TournamentRegistration links a user to a tournament.  PaymentAmount is the
// entry fee at the time of registration.
type TournamentRegistration struct {
	ID            uint64             `json:"id"`
	TournamentID  uint64             `json:"tournament_id"`
	UserID        uint64             `json:"user_id"`
	Status        RegistrationStatus `json:"status"`
	PaymentAmount decimal.Decimal    `json:"payment_amount"`
	RegisteredAt  time.Time          `json:"registered_at"`
}

// RegistrationDetail adds tournament context for the "my registrations" view.
type RegistrationDetail struct {
	TournamentRegistration
	TournamentName string           `json:"tournament_name"`
	Game           string           `json:"game"`
	StartDate      time.Time        `json:"start_date"`
	ShopName       string           `json:"shop_name"`
	TournamentStat TournamentStatus `json:"tournament_status"`
}
