package service

import (
	"context"
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/booking"
	"github.com/iliyamo/gaming-lounge-booking/internal/clock"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/repository"
)

// StationStore reads stations and their open reservations.
type StationStore interface {
	List(ctx context.Context, f repository.StationFilter) ([]repository.StationRow, error)
	OpenReservations(ctx context.Context, stationIDs []uint64, since time.Time) (map[uint64][]model.Reservation, error)
}

// StationService answers "what is the state of these stations" questions.
// It never writes; the derived status is recomputed on every call.
type StationService struct {
	store        StationStore
	clock        clock.Clock
	searchWindow time.Duration
}

func NewStationService(store StationStore, clk clock.Clock, searchWindow time.Duration) *StationService {
	if searchWindow <= 0 {
		searchWindow = 2 * time.Hour
	}
	return &StationService{store: store, clock: clk, searchWindow: searchWindow}
}

// ListWithStatus returns non-maintenance stations, optionally for one shop,
// each with its live status.
func (s *StationService) ListWithStatus(ctx context.Context, shopID *uint64) ([]model.StationView, error) {
	now := s.clock.Now()
	rows, byStation, err := s.load(ctx, repository.StationFilter{ShopID: shopID}, now)
	if err != nil {
		return nil, err
	}
	out := make([]model.StationView, 0, len(rows))
	for _, row := range rows {
		v := booking.ResolveStatus(row.Status, byStation[row.ID], now)
		out = append(out, model.StationView{
			Station:         row.Station,
			ShopName:        row.ShopName,
			CurrentStatus:   v.Status,
			IsAvailable:     v.Available(),
			NextAvailableAt: v.NextAvailableAt,
		})
	}
	return out, nil
}

// SearchInput filters the availability search.  Nil times default to now
// and start plus the configured window.
type SearchInput struct {
	ShopID *uint64
	Type   *model.StationType
	Start  *time.Time
	End    *time.Time
}

// SearchResult echoes the resolved window with the matching stations.
type SearchResult struct {
	Start    time.Time           `json:"start_time"`
	End      time.Time           `json:"end_time"`
	Stations []model.StationView `json:"stations"`
}

// Search reports, for every non-maintenance station matching the filter,
// whether it is free for the requested window and its current status.
func (s *StationService) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	now := s.clock.Now()
	start := now
	if in.Start != nil {
		start = in.Start.UTC()
	}
	end := start.Add(s.searchWindow)
	if in.End != nil {
		end = in.End.UTC()
	}
	if !end.After(start) {
		return nil, invalid("end_time", "must be after start time")
	}
	if in.Type != nil && !in.Type.Valid() {
		return nil, invalid("type", "unknown station type")
	}

	since := now
	if start.Before(since) {
		since = start
	}
	rows, byStation, err := s.load(ctx, repository.StationFilter{ShopID: in.ShopID, Type: in.Type}, since)
	if err != nil {
		return nil, err
	}
	window := booking.Interval{Start: start, End: end}
	out := &SearchResult{Start: start, End: end, Stations: make([]model.StationView, 0, len(rows))}
	for _, row := range rows {
		rs := byStation[row.ID]
		v := booking.ResolveSearchStatus(row.Status, rs, now, start)
		out.Stations = append(out.Stations, model.StationView{
			Station:         row.Station,
			ShopName:        row.ShopName,
			CurrentStatus:   v.Status,
			IsAvailable:     !booking.HasOverlap(window, rs),
			NextAvailableAt: v.NextAvailableAt,
		})
	}
	return out, nil
}

func (s *StationService) load(ctx context.Context, f repository.StationFilter, since time.Time) ([]repository.StationRow, map[uint64][]model.Reservation, error) {
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	byStation, err := s.store.OpenReservations(ctx, ids, since)
	if err != nil {
		return nil, nil, err
	}
	return rows, byStation, nil
}
