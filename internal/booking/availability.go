package booking

import (
	"errors"
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// ErrInvalidInterval is returned when an interval does not end after it
// starts.
var ErrInvalidInterval = errors.New("end time must be after start time")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool { return i.End.After(i.Start) }

// Duration is End minus Start.
func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Overlaps reports whether a and b share any instant.  Touching endpoints
// (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

func span(r model.Reservation) Interval { return Interval{Start: r.StartTime, End: r.EndTime} }

// HasOverlap reports whether candidate intersects any non-cancelled
// reservation.
func HasOverlap(candidate Interval, reservations []model.Reservation) bool {
	return FindConflict(candidate, reservations) != nil
}

// FindConflict returns the conflicting non-cancelled reservation that ends
// first, or nil.  Ties go to the lowest ID.
func FindConflict(candidate Interval, reservations []model.Reservation) *model.Reservation {
	var found *model.Reservation
	for i := range reservations {
		r := &reservations[i]
		if r.Status == model.ReservationCancelled || !Overlaps(candidate, span(*r)) {
			continue
		}
		if found == nil || r.EndTime.Before(found.EndTime) ||
			(r.EndTime.Equal(found.EndTime) && r.ID < found.ID) {
			found = r
		}
	}
	return found
}

// ConflictReason tells which check rejected a candidate.
type ConflictReason string

const (
	ReasonInUse   ConflictReason = "in_use"
	ReasonOverlap ConflictReason = "overlap"
)

// Conflict describes why a station cannot be booked for an interval.
type Conflict struct {
	Reason      ConflictReason
	Reservation model.Reservation
}

// Until is the instant the blocking reservation releases the station.
func (c Conflict) Until() time.Time { return c.Reservation.EndTime }

// Guard rejects bookings that start too close to "now" while the station is
// occupied.  A zero Grace still blocks a start at or before now.
type Guard struct {
	Grace time.Duration
}

// InUseConflict returns the active reservation when one covers now and the
// candidate starts no later than now+Grace.
func (g Guard) InUseConflict(candidateStart time.Time, reservations []model.Reservation, now time.Time) *model.Reservation {
	active, _ := pick(reservations, now)
	if active == nil {
		return nil
	}
	if candidateStart.After(now.Add(g.Grace)) {
		return nil
	}
	return active
}

// Check runs the in-use guard and then the overlap check.  A nil result
// means the station is free for candidate.
func (g Guard) Check(candidate Interval, reservations []model.Reservation, now time.Time) *Conflict {
	if r := g.InUseConflict(candidate.Start, reservations, now); r != nil {
		return &Conflict{Reason: ReasonInUse, Reservation: *r}
	}
	if r := FindConflict(candidate, reservations); r != nil {
		return &Conflict{Reason: ReasonOverlap, Reservation: *r}
	}
	return nil
}
