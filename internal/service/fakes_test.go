package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/repository"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

// memStore is an in-memory stand-in for the MySQL repositories.  WithinTx
// snapshots state and restores it when fn fails, mimicking a rollback.
type memStore struct {
	mu           sync.Mutex
	stations     map[uint64]model.Station
	shopNames    map[uint64]string
	users        map[uint64]model.User
	reservations []model.Reservation
	nextID       uint64
	failInsert   error
	listHide     *bool
}

func newMemStore() *memStore {
	return &memStore{
		stations:  map[uint64]model.Station{},
		shopNames: map[uint64]string{1: "Pixel Den"},
		users:     map[uint64]model.User{},
		nextID:    100,
	}
}

func (m *memStore) addStation(id uint64, rate string, status model.StationStatus) {
	m.stations[id] = model.Station{ID: id, ShopID: 1, Name: "PC", Type: model.StationPC, Status: status,
		HourlyRate: decimal.RequireFromString(rate)}
}

func (m *memStore) addUser(id uint64, points int) {
	m.users[id] = model.User{ID: id, LoyaltyPoints: points}
}

func (m *memStore) addReservation(r model.Reservation) {
	m.reservations = append(m.reservations, r)
}

func (m *memStore) reservation(id uint64) model.Reservation {
	for _, r := range m.reservations {
		if r.ID == id {
			return r
		}
	}
	return model.Reservation{}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx repository.ReservationTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make(map[uint64]model.User, len(m.users))
	for k, v := range m.users {
		users[k] = v
	}
	rs := append([]model.Reservation(nil), m.reservations...)
	next := m.nextID
	if err := fn(memTx{m}); err != nil {
		m.users, m.reservations, m.nextID = users, rs, next
		return err
	}
	return nil
}

func (m *memStore) ListForUser(_ context.Context, userID uint64, hideCompleted bool) ([]model.ReservationDetail, error) {
	m.listHide = &hideCompleted
	var out []model.ReservationDetail
	for _, r := range m.reservations {
		if r.UserID != userID || (hideCompleted && r.Status == model.ReservationCompleted) {
			continue
		}
		out = append(out, model.ReservationDetail{Reservation: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (m *memStore) List(_ context.Context, f repository.StationFilter) ([]repository.StationRow, error) {
	var out []repository.StationRow
	for _, st := range m.stations {
		if !f.IncludeMaintenance && st.Status == model.StationMaintenance {
			continue
		}
		if f.ShopID != nil && st.ShopID != *f.ShopID {
			continue
		}
		if f.Type != nil && st.Type != *f.Type {
			continue
		}
		out = append(out, repository.StationRow{Station: st, ShopName: m.shopNames[st.ShopID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) OpenReservations(_ context.Context, ids []uint64, since time.Time) (map[uint64][]model.Reservation, error) {
	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[uint64][]model.Reservation{}
	for _, r := range m.reservations {
		if want[r.StationID] && r.Status != model.ReservationCancelled && r.EndTime.After(since) {
			out[r.StationID] = append(out[r.StationID], r)
		}
	}
	return out, nil
}

type memTx struct{ m *memStore }

func (t memTx) LockStation(_ context.Context, id uint64) (*model.Station, error) {
	st, ok := t.m.stations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (t memTx) OpenReservations(ctx context.Context, stationID uint64, since time.Time) ([]model.Reservation, error) {
	got, err := t.m.OpenReservations(ctx, []uint64{stationID}, since)
	return got[stationID], err
}

func (t memTx) LockUser(_ context.Context, id uint64) (*model.User, error) {
	u, ok := t.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (t memTx) SetLoyaltyPoints(_ context.Context, id uint64, points int) error {
	if points < 0 {
		return errors.New("negative balance")
	}
	u := t.m.users[id]
	u.LoyaltyPoints = points
	t.m.users[id] = u
	return nil
}

func (t memTx) InsertReservation(_ context.Context, r *model.Reservation) error {
	if t.m.failInsert != nil {
		return t.m.failInsert
	}
	t.m.nextID++
	r.ID = t.m.nextID
	t.m.reservations = append(t.m.reservations, *r)
	return nil
}

func (t memTx) LockReservation(_ context.Context, id uint64) (*model.Reservation, error) {
	for _, r := range t.m.reservations {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t memTx) SetReservationStatus(_ context.Context, id uint64, st model.ReservationStatus) error {
	for i := range t.m.reservations {
		if t.m.reservations[i].ID == id {
			t.m.reservations[i].Status = st
			return nil
		}
	}
	return repository.ErrNotFound
}

type published struct {
	key string
	v   any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{key, v})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, s := range p.sent {
		out = append(out, s.key)
	}
	return out
}

// memTournaments backs the tournament service.
type memTournaments struct {
	mu            sync.Mutex
	tournaments   map[uint64]model.Tournament
	registrations []model.TournamentRegistration
	nextID        uint64
}

func newMemTournaments() *memTournaments {
	return &memTournaments{tournaments: map[uint64]model.Tournament{}, nextID: 500}
}

func (m *memTournaments) List(_ context.Context, status *model.TournamentStatus) ([]model.Tournament, error) {
	var out []model.Tournament
	for _, t := range m.tournaments {
		if status == nil || t.Status == *status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memTournaments) GetByID(_ context.Context, id uint64) (*model.Tournament, int, error) {
	t, ok := m.tournaments[id]
	if !ok {
		return nil, 0, repository.ErrNotFound
	}
	n := 0
	for _, r := range m.registrations {
		if r.TournamentID == id && r.Status != model.RegistrationCancelled {
			n++
		}
	}
	return &t, n, nil
}

func (m *memTournaments) Create(_ context.Context, t *model.Tournament) error {
	m.nextID++
	t.ID = m.nextID
	m.tournaments[t.ID] = *t
	return nil
}

func (m *memTournaments) Delete(_ context.Context, id uint64) (*model.Tournament, error) {
	t, ok := m.tournaments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.tournaments, id)
	kept := m.registrations[:0]
	for _, r := range m.registrations {
		if r.TournamentID != id {
			kept = append(kept, r)
		}
	}
	m.registrations = kept
	return &t, nil
}

func (m *memTournaments) ListRegistrationsForUser(_ context.Context, userID uint64) ([]model.RegistrationDetail, error) {
	var out []model.RegistrationDetail
	for _, r := range m.registrations {
		if r.UserID == userID {
			out = append(out, model.RegistrationDetail{TournamentRegistration: r, TournamentName: m.tournaments[r.TournamentID].Name})
		}
	}
	return out, nil
}

func (m *memTournaments) WithinTx(_ context.Context, fn func(tx repository.TournamentTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := make(map[uint64]model.Tournament, len(m.tournaments))
	for k, v := range m.tournaments {
		ts[k] = v
	}
	regs := append([]model.TournamentRegistration(nil), m.registrations...)
	if err := fn(memTournamentTx{m}); err != nil {
		m.tournaments, m.registrations = ts, regs
		return err
	}
	return nil
}

type memTournamentTx struct{ m *memTournaments }

func (t memTournamentTx) LockTournament(_ context.Context, id uint64) (*model.Tournament, error) {
	tour, ok := t.m.tournaments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tour, nil
}

func (t memTournamentTx) HasActiveRegistration(_ context.Context, tournamentID, userID uint64) (bool, error) {
	for _, r := range t.m.registrations {
		if r.TournamentID == tournamentID && r.UserID == userID && r.Status != model.RegistrationCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (t memTournamentTx) InsertRegistration(_ context.Context, reg *model.TournamentRegistration) error {
	t.m.nextID++
	reg.ID = t.m.nextID
	t.m.registrations = append(t.m.registrations, *reg)
	return nil
}

func (t memTournamentTx) IncrementParticipants(_ context.Context, id uint64) error {
	tour := t.m.tournaments[id]
	if tour.CurrentParticipants >= tour.MaxParticipants {
		return repository.ErrConflict
	}
	tour.CurrentParticipants++
	t.m.tournaments[id] = tour
	return nil
}

// memShops backs ShopLookup and ShopStore.
type memShops struct {
	shops    map[uint64]model.Shop
	stations map[uint64][]model.Station
	nextID   uint64
}

func newMemShops() *memShops {
	return &memShops{shops: map[uint64]model.Shop{}, stations: map[uint64][]model.Station{}, nextID: 10}
}

func (m *memShops) ListActive(_ context.Context, city, country string) ([]model.Shop, error) {
	var out []model.Shop
	for _, s := range m.shops {
		if s.IsActive && (city == "" || s.City == city) && (country == "" || s.Country == country) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memShops) ListAll(_ context.Context) ([]model.Shop, error) {
	var out []model.Shop
	for _, s := range m.shops {
		out = append(out, s)
	}
	return out, nil
}

func (m *memShops) GetByID(_ context.Context, id uint64) (*model.Shop, error) {
	s, ok := m.shops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memShops) CreateWithStations(_ context.Context, s *model.Shop, stations []model.Station) error {
	m.nextID++
	s.ID = m.nextID
	m.shops[s.ID] = *s
	for i := range stations {
		stations[i].ShopID = s.ID
	}
	m.stations[s.ID] = stations
	return nil
}

func (m *memShops) AddStationsIfEmpty(_ context.Context, shopID uint64, stations []model.Station) error {
	if _, ok := m.shops[shopID]; !ok {
		return repository.ErrNotFound
	}
	if len(m.stations[shopID]) > 0 {
		return repository.ErrConflict
	}
	m.stations[shopID] = stations
	return nil
}

func (m *memShops) List(_ context.Context, f repository.StationFilter) ([]repository.StationRow, error) {
	var out []repository.StationRow
	for _, st := range m.stations[*f.ShopID] {
		out = append(out, repository.StationRow{Station: st})
	}
	return out, nil
}

type memUsers []model.User

func (m memUsers) ListPlain(context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m {
		if u.Capabilities.Plain() {
			out = append(out, u)
		}
	}
	return out, nil
}

// memImages records saved and removed image URLs.
type memImages struct {
	saved   []string
	removed []string
}

func (m *memImages) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "/uploads/tournaments/" + filename
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *memImages) Remove(url string) error {
	m.removed = append(m.removed, url)
	return nil
}
