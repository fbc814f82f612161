package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoyaltyPolicy holds the redemption and award thresholds.
type LoyaltyPolicy struct {
	RedemptionCost    int           // points debited when free hours apply
	FreeHours         time.Duration // maximum free time granted per redemption
	MinRedeemDuration time.Duration // shortest booking that may redeem
	AwardThreshold    time.Duration // shortest completed booking that earns points
	AwardPoints       int
}

// DefaultLoyaltyPolicy: 50 points buy up to two free hours on bookings of
// at least two hours; completing two hours or more earns 10 points.
func DefaultLoyaltyPolicy() LoyaltyPolicy {
	return LoyaltyPolicy{
		RedemptionCost:    50,
		FreeHours:         2 * time.Hour,
		MinRedeemDuration: 2 * time.Hour,
		AwardThreshold:    2 * time.Hour,
		AwardPoints:       10,
	}
}

// Quote is the priced outcome of a prospective reservation.
type Quote struct {
	Duration      time.Duration   `json:"-"`
	FreeDuration  time.Duration   `json:"-"`
	Hours         decimal.Decimal `json:"hours"`
	FreeHours     decimal.Decimal `json:"free_hours"`
	BillableHours decimal.Decimal `json:"billable_hours"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PointsToDebit int             `json:"points_debited"`
}

// Pricer computes reservation prices and loyalty awards.
type Pricer struct {
	Policy LoyaltyPolicy
}

// NewPricer returns a Pricer using policy.
func NewPricer(policy LoyaltyPolicy) Pricer { return Pricer{Policy: policy} }

// Eligible reports whether a user holding points may redeem on a booking
// lasting d.
func (p Pricer) Eligible(points int, d time.Duration) bool {
	return points >= p.Policy.RedemptionCost && d >= p.Policy.MinRedeemDuration
}

// Quote prices [start, end) at rate for a user holding points.  The total
// is rate times billable hours, rounded to cents.
func (p Pricer) Quote(rate decimal.Decimal, start, end time.Time, points int) (Quote, error) {
	if !end.After(start) {
		return Quote{}, ErrInvalidInterval
	}
	d := end.Sub(start)
	q := Quote{Duration: d}
	if p.Eligible(points, d) {
		q.FreeDuration = min(p.Policy.FreeHours, d)
		q.PointsToDebit = p.Policy.RedemptionCost
	}
	billable := d - q.FreeDuration
	q.Hours = Hours(d)
	q.FreeHours = Hours(q.FreeDuration)
	q.BillableHours = Hours(billable)
	q.TotalPrice = rate.Mul(decimal.NewFromInt(int64(billable))).
		Div(decimal.NewFromInt(int64(time.Hour))).
		Round(2)
	return q, nil
}

// Award returns the points earned by completing a reservation lasting d.
func (p Pricer) Award(d time.Duration) int {
	if d >= p.Policy.AwardThreshold {
		return p.Policy.AwardPoints
	}
	return 0
}

// Hours converts d to fractional hours.
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(decimal.NewFromInt(int64(time.Hour)))
}
