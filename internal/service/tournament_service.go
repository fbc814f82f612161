package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/gaming-lounge-booking/internal/clock"
	"github.com/iliyamo/gaming-lounge-booking/internal/logger"
	"github.com/iliyamo/gaming-lounge-booking/internal/metrics"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/queue"
	"github.com/iliyamo/gaming-lounge-booking/internal/repository"
)

// TournamentStore is the tournament persistence.
type TournamentStore interface {
	List(ctx context.Context, status *model.TournamentStatus) ([]model.Tournament, error)
	GetByID(ctx context.Context, id uint64) (*model.Tournament, int, error)
	Create(ctx context.Context, t *model.Tournament) error
	Delete(ctx context.Context, id uint64) (*model.Tournament, error)
	ListRegistrationsForUser(ctx context.Context, userID uint64) ([]model.RegistrationDetail, error)
	WithinTx(ctx context.Context, fn func(tx repository.TournamentTx) error) error
}

// ShopLookup resolves a shop by id.
type ShopLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Shop, error)
}

type TournamentService struct {
	store  TournamentStore
	shops  ShopLookup
	images ImageStore
	clock  clock.Clock
	events EventPublisher
}

func NewTournamentService(store TournamentStore, shops ShopLookup, images ImageStore, clk clock.Clock, events EventPublisher) *TournamentService {
	if events == nil {
		events = nopPublisher{}
	}
	return &TournamentService{store: store, shops: shops, images: images, clock: clk, events: events}
}

// List returns tournaments ordered by start date.  An unrecognised status
// filter is ignored.
func (s *TournamentService) List(ctx context.Context, status string) ([]model.Tournament, error) {
	var filter *model.TournamentStatus
	if st, ok := model.ParseTournamentStatus(strings.TrimSpace(status)); ok {
		filter = &st
	}
	return s.store.List(ctx, filter)
}

// TournamentDetail is a tournament with its live registration count.
type TournamentDetail struct {
	model.Tournament
	RegistrationCount int `json:"registration_count"`
}

func (s *TournamentService) Get(ctx context.Context, id uint64) (*TournamentDetail, error) {
	t, n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "tournament")
	}
	return &TournamentDetail{Tournament: *t, RegistrationCount: n}, nil
}

// Register signs the caller up.  The tournament row is locked so the
// participant counter and the registration row change together and the cap
// is never exceeded.
func (s *TournamentService) Register(ctx context.Context, userID, tournamentID uint64) (reg *model.TournamentRegistration, err error) {
	defer func() { metrics.TournamentRegistrations.WithLabelValues(outcome(err)).Inc() }()

	now := s.clock.Now()
	var participants int
	err = s.store.WithinTx(ctx, func(tx repository.TournamentTx) error {
		t, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return fromRepo(err, "tournament")
		}
		switch {
		case t.Status != model.TournamentRegistrationOpen:
			return conflict("registration is not open for this tournament")
		case t.Full():
			return conflict("tournament is full")
		case now.After(t.RegistrationDeadline):
			return conflict("registration deadline has passed")
		}
		dup, err := tx.HasActiveRegistration(ctx, t.ID, userID)
		if err != nil {
			return err
		}
		if dup {
			return conflict("you are already registered for this tournament")
		}

		r := &model.TournamentRegistration{
			TournamentID:  t.ID,
			UserID:        userID,
			Status:        model.RegistrationConfirmed,
			PaymentAmount: t.EntryFee,
			RegisteredAt:  now,
		}
		if err := tx.InsertRegistration(ctx, r); err != nil {
			return fromRepo(err, "registration")
		}
		if err := tx.IncrementParticipants(ctx, t.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return conflict("tournament is full")
			}
			return err
		}
		participants = t.CurrentParticipants + 1
		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := queue.TournamentRegisteredEvent{
		RegistrationID: reg.ID,
		TournamentID:   reg.TournamentID,
		UserID:         userID,
		PaymentAmount:  reg.PaymentAmount,
		Participants:   participants,
		OccurredAt:     now,
	}
	publishEvent(ctx, s.events, queue.KeyTournamentRegistered, ev)
	return reg, nil
}

// MyRegistrations lists the caller's tournament entries.
func (s *TournamentService) MyRegistrations(ctx context.Context, userID uint64) ([]model.RegistrationDetail, error) {
	return s.store.ListRegistrationsForUser(ctx, userID)
}

// ImageUpload is an image attached to a tournament create request.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// CreateTournamentInput is the admin form for a new tournament.
type CreateTournamentInput struct {
	ShopID               uint64
	Name                 string
	Game                 string
	Description          string
	StartDate            time.Time
	RegistrationDeadline time.Time
	MaxParticipants      int
	EntryFee             decimal.Decimal
	PrizePool            decimal.Decimal
	ImageURL             string
	Image                *ImageUpload
}

// Create validates and stores a tournament opened for registration.  An
// uploaded image takes precedence over ImageURL.
func (s *TournamentService) Create(ctx context.Context, in CreateTournamentInput) (*model.Tournament, error) {
	now := s.clock.Now()
	start, deadline := in.StartDate.UTC(), in.RegistrationDeadline.UTC()
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, invalid("name", "is required")
	case strings.TrimSpace(in.Game) == "":
		return nil, invalid("game", "is required")
	case in.MaxParticipants < 1:
		return nil, invalid("max_participants", "must be at least 1")
	case in.EntryFee.IsNegative() || in.PrizePool.IsNegative():
		return nil, invalid("entry_fee", "amounts cannot be negative")
	case !deadline.Before(start):
		return nil, invalid("registration_deadline", "must be before the tournament start date")
	case deadline.Before(now):
		return nil, invalid("registration_deadline", "cannot be in the past")
	case start.Before(now):
		return nil, invalid("start_date", "cannot be in the past")
	}
	if _, err := s.shops.GetByID(ctx, in.ShopID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("shop_id", "shop not found")
		}
		return nil, err
	}

	t := &model.Tournament{
		ShopID:               in.ShopID,
		Name:                 strings.TrimSpace(in.Name),
		Game:                 strings.TrimSpace(in.Game),
		StartDate:            start,
		RegistrationDeadline: deadline,
		MaxParticipants:      in.MaxParticipants,
		EntryFee:             in.EntryFee.Round(2),
		PrizePool:            in.PrizePool.Round(2),
		Status:               model.TournamentRegistrationOpen,
		CreatedAt:            now,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		t.Description = &d
	}
	saved := false
	switch {
	case in.Image != nil && s.images != nil:
		url, err := s.images.Save(ctx, in.Image.Filename, in.Image.Body)
		if err != nil {
			return nil, err
		}
		t.ImageURL = &url
		saved = true
	case strings.TrimSpace(in.ImageURL) != "":
		u := strings.TrimSpace(in.ImageURL)
		t.ImageURL = &u
	}

	if err := s.store.Create(ctx, t); err != nil {
		if saved {
			_ = s.images.Remove(*t.ImageURL)
		}
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return t, nil
}

// Delete removes a tournament, its registrations and any uploaded image.
func (s *TournamentService) Delete(ctx context.Context, id uint64) error {
	t, err := s.store.Delete(ctx, id)
	if err != nil {
		return fromRepo(err, "tournament")
	}
	if t.ImageURL != nil && s.images != nil {
		if err := s.images.Remove(*t.ImageURL); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Uint64("tournament_id", id).Msg("remove tournament image")
		}
	}
	return nil
}
