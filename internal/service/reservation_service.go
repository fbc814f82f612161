package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/gaming-lounge-booking/internal/booking"
	"github.com/iliyamo/gaming-lounge-booking/internal/clock"
	"github.com/iliyamo/gaming-lounge-booking/internal/logger"
	"github.com/iliyamo/gaming-lounge-booking/internal/metrics"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/queue"
	"github.com/iliyamo/gaming-lounge-booking/internal/repository"
)

// EventPublisher delivers domain events.  Failures are logged by the caller
// and never undo a committed operation.
type EventPublisher interface {
	Publish(ctx context.Context, key string, v any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

// ReservationStore is the persistence the lifecycle manager needs.
type ReservationStore interface {
	WithinTx(ctx context.Context, fn func(tx repository.ReservationTx) error) error
	ListForUser(ctx context.Context, userID uint64, hideCompleted bool) ([]model.ReservationDetail, error)
}

// ReservationOptions carries the tunable booking rules.
type ReservationOptions struct {
	InUseGrace    time.Duration
	HideCompleted bool
	Loyalty       booking.LoyaltyPolicy
}

// ReservationService creates, cancels, completes and lists reservations.
type ReservationService struct {
	store         ReservationStore
	clock         clock.Clock
	guard         booking.Guard
	pricer        booking.Pricer
	hideCompleted bool
	events        EventPublisher
}

// NewReservationService wires the lifecycle manager.  A nil publisher
// disables events.
func NewReservationService(store ReservationStore, clk clock.Clock, opts ReservationOptions, events EventPublisher) *ReservationService {
	if events == nil {
		events = nopPublisher{}
	}
	return &ReservationService{
		store:         store,
		clock:         clk,
		guard:         booking.Guard{Grace: opts.InUseGrace},
		pricer:        booking.NewPricer(opts.Loyalty),
		hideCompleted: opts.HideCompleted,
		events:        events,
	}
}

// CreateReservationInput is a booking request for one station.
type CreateReservationInput struct {
	StationID uint64
	Start     time.Time
	End       time.Time
	Notes     string
}

// CreateResult is the stored reservation plus how it was priced.
type CreateResult struct {
	Reservation *model.Reservation
	Quote       booking.Quote
	NewBalance  int
}

// Create books a station for the caller.  The station row is locked for the
// whole check-then-insert sequence so two overlapping requests for the same
// station cannot both succeed.
func (s *ReservationService) Create(ctx context.Context, userID uint64, in CreateReservationInput) (res *CreateResult, err error) {
	defer func() { metrics.ReservationOutcomes.WithLabelValues("create", outcome(err)).Inc() }()

	now := s.clock.Now()
	start, end := in.Start.UTC(), in.End.UTC()
	switch {
	case in.StationID == 0:
		return nil, invalid("station_id", "is required")
	case !end.After(start):
		return nil, invalid("end_time", "must be after start time")
	case start.Before(now):
		return nil, invalid("start_time", "cannot be in the past")
	}

	var notes *string
	if n := strings.TrimSpace(in.Notes); n != "" {
		notes = &n
	}

	err = s.store.WithinTx(ctx, func(tx repository.ReservationTx) error {
		st, err := tx.LockStation(ctx, in.StationID)
		if err != nil {
			return fromRepo(err, "station")
		}
		existing, err := tx.OpenReservations(ctx, st.ID, now)
		if err != nil {
			return fmt.Errorf("load reservations: %w", err)
		}
		if c := s.guard.Check(booking.Interval{Start: start, End: end}, existing, now); c != nil {
			return conflictFor(c)
		}

		u, err := tx.LockUser(ctx, userID)
		if err != nil {
			return fromRepo(err, "user")
		}
		q, err := s.pricer.Quote(st.HourlyRate, start, end, u.LoyaltyPoints)
		if err != nil {
			return invalid("end_time", err.Error())
		}
		balance := u.LoyaltyPoints
		if q.PointsToDebit > 0 {
			balance -= q.PointsToDebit
			if err := tx.SetLoyaltyPoints(ctx, u.ID, balance); err != nil {
				return fmt.Errorf("debit loyalty points: %w", err)
			}
		}

		r := &model.Reservation{
			UserID:     u.ID,
			StationID:  st.ID,
			StartTime:  start,
			EndTime:    end,
			Status:     model.ReservationConfirmed,
			TotalPrice: q.TotalPrice,
			Notes:      notes,
			CreatedAt:  now,
		}
		if err := tx.InsertReservation(ctx, r); err != nil {
			return err
		}
		res = &CreateResult{Reservation: r, Quote: q, NewBalance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Quote.PointsToDebit > 0 {
		metrics.LoyaltyPoints.WithLabelValues("debited").Add(float64(res.Quote.PointsToDebit))
	}
	s.publish(ctx, queue.KeyReservationCreated, queue.ReservationEvent{
		ReservationID: res.Reservation.ID,
		UserID:        userID,
		StationID:     res.Reservation.StationID,
		StartTime:     start,
		EndTime:       end,
		Status:        string(res.Reservation.Status),
		TotalPrice:    res.Reservation.TotalPrice,
		PointsDebited: res.Quote.PointsToDebit,
		NewBalance:    &res.NewBalance,
		OccurredAt:    now,
	})
	return res, nil
}

func conflictFor(c *booking.Conflict) error {
	until := c.Until()
	msg := fmt.Sprintf("station is already reserved for this time slot, available after %s", until.Format(time.RFC3339))
	if c.Reason == booking.ReasonInUse {
		msg = fmt.Sprintf("station is currently in use until %s", until.Format(time.RFC3339))
	}
	return &ConflictError{Msg: msg, Until: &until}
}

// Cancel moves the caller's reservation to Cancelled.  Points spent on the
// booking are not returned.
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID uint64) (err error) {
	defer func() { metrics.ReservationOutcomes.WithLabelValues("cancel", outcome(err)).Inc() }()

	var cancelled model.Reservation
	err = s.store.WithinTx(ctx, func(tx repository.ReservationTx) error {
		r, err := s.ownedReservation(ctx, tx, userID, reservationID)
		if err != nil {
			return err
		}
		if r.Status.Terminal() {
			return &StateError{Msg: "cannot cancel this reservation"}
		}
		if err := tx.SetReservationStatus(ctx, r.ID, model.ReservationCancelled); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		r.Status = model.ReservationCancelled
		cancelled = *r
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, queue.KeyReservationCancelled, queue.ReservationEvent{
		ReservationID: cancelled.ID,
		UserID:        cancelled.UserID,
		StationID:     cancelled.StationID,
		StartTime:     cancelled.StartTime,
		EndTime:       cancelled.EndTime,
		Status:        string(cancelled.Status),
		TotalPrice:    cancelled.TotalPrice,
		OccurredAt:    s.clock.Now(),
	})
	return nil
}

// CompletionResult reports the loyalty outcome of completing a reservation.
type CompletionResult struct {
	ReservationID uint64          `json:"reservation_id"`
	PointsAwarded int             `json:"points_awarded"`
	NewBalance    int             `json:"new_loyalty_points"`
	DurationHours decimal.Decimal `json:"duration_hours"`
}

// Complete marks the caller's reservation Completed and credits loyalty
// points when the booked duration qualifies.
func (s *ReservationService) Complete(ctx context.Context, userID, reservationID uint64) (out *CompletionResult, err error) {
	defer func() { metrics.ReservationOutcomes.WithLabelValues("complete", outcome(err)).Inc() }()

	var done model.Reservation
	err = s.store.WithinTx(ctx, func(tx repository.ReservationTx) error {
		r, err := s.ownedReservation(ctx, tx, userID, reservationID)
		if err != nil {
			return err
		}
		switch r.Status {
		case model.ReservationCompleted:
			return &StateError{Msg: "reservation is already completed"}
		case model.ReservationCancelled:
			return &StateError{Msg: "cannot complete a cancelled reservation"}
		}

		u, err := tx.LockUser(ctx, userID)
		if err != nil {
			return fromRepo(err, "user")
		}
		d := r.Duration()
		award := s.pricer.Award(d)
		balance := u.LoyaltyPoints + award
		if award > 0 {
			if err := tx.SetLoyaltyPoints(ctx, u.ID, balance); err != nil {
				return fmt.Errorf("award loyalty points: %w", err)
			}
		}
		if err := tx.SetReservationStatus(ctx, r.ID, model.ReservationCompleted); err != nil {
			return fmt.Errorf("complete reservation: %w", err)
		}
		r.Status = model.ReservationCompleted
		done = *r
		out = &CompletionResult{
			ReservationID: r.ID,
			PointsAwarded: award,
			NewBalance:    balance,
			DurationHours: booking.Hours(d).Round(2),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.PointsAwarded > 0 {
		metrics.LoyaltyPoints.WithLabelValues("awarded").Add(float64(out.PointsAwarded))
	}
	s.publish(ctx, queue.KeyReservationCompleted, queue.ReservationEvent{
		ReservationID: done.ID,
		UserID:        done.UserID,
		StationID:     done.StationID,
		StartTime:     done.StartTime,
		EndTime:       done.EndTime,
		Status:        string(done.Status),
		TotalPrice:    done.TotalPrice,
		PointsAwarded: out.PointsAwarded,
		NewBalance:    &out.NewBalance,
		OccurredAt:    s.clock.Now(),
	})
	return out, nil
}

// ListMine returns the caller's reservations, newest start first.
func (s *ReservationService) ListMine(ctx context.Context, userID uint64) ([]model.ReservationDetail, error) {
	return s.store.ListForUser(ctx, userID, s.hideCompleted)
}

func (s *ReservationService) ownedReservation(ctx context.Context, tx repository.ReservationTx, userID, id uint64) (*model.Reservation, error) {
	r, err := tx.LockReservation(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "reservation")
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}
	return r, nil
}

// publishTimeout bounds how long a request waits on event delivery after
// its transaction has committed.
var publishTimeout = 250 * time.Millisecond

func (s *ReservationService) publish(ctx context.Context, key string, ev any) {
	publishEvent(ctx, s.events, key, ev)
}

func publishEvent(ctx context.Context, events EventPublisher, key string, ev any) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := events.Publish(pctx, key, ev); err != nil {
		logEvent(ctx, key, err)
	}
}

func logEvent(ctx context.Context, key string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logger.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("event not published")
}
