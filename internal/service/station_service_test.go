package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gaming-lounge-booking/internal/clock"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

func stationFixture() *memStore {
	store := newMemStore()
	store.addStation(1, "10.00", model.StationAvailable)
	store.addStation(2, "10.00", model.StationAvailable)
	store.addStation(3, "10.00", model.StationMaintenance)
	store.addReservation(model.Reservation{ID: 10, StationID: 1, StartTime: at(9, 0), EndTime: at(11, 0), Status: model.ReservationConfirmed})
	store.addReservation(model.Reservation{ID: 11, StationID: 2, StartTime: at(12, 0), EndTime: at(14, 0), Status: model.ReservationConfirmed})
	return store
}

func byID(views []model.StationView) map[uint64]model.StationView {
	out := make(map[uint64]model.StationView, len(views))
	for _, v := range views {
		out[v.ID] = v
	}
	return out
}

func TestListWithStatus(t *testing.T) {
	svc := NewStationService(stationFixture(), clock.NewFixed(at(10, 0)), 2*time.Hour)

	got, err := svc.ListWithStatus(context.Background(), nil)
	require.NoError(t, err)

	views := byID(got)
	require.Len(t, views, 2, "maintenance stations are hidden")

	assert.Equal(t, model.StationInUse, views[1].CurrentStatus)
	assert.False(t, views[1].IsAvailable)
	require.NotNil(t, views[1].NextAvailableAt)
	assert.True(t, views[1].NextAvailableAt.Equal(at(11, 0)))
	assert.Equal(t, "Pixel Den", views[1].ShopName)

	assert.Equal(t, model.StationReserved, views[2].CurrentStatus)
	assert.True(t, views[2].NextAvailableAt.Equal(at(14, 0)))
}

func TestListWithStatus_DoesNotMutateStoredStatus(t *testing.T) {
	store := stationFixture()
	svc := NewStationService(store, clock.NewFixed(at(10, 0)), 0)

	first, err := svc.ListWithStatus(context.Background(), nil)
	require.NoError(t, err)
	second, err := svc.ListWithStatus(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, model.StationAvailable, store.stations[1].Status)
}

func TestSearch_DefaultsWindowFromNow(t *testing.T) {
	svc := NewStationService(stationFixture(), clock.NewFixed(at(10, 0)), 2*time.Hour)

	got, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err)

	assert.True(t, got.Start.Equal(at(10, 0)))
	assert.True(t, got.End.Equal(at(12, 0)))
	views := byID(got.Stations)
	assert.False(t, views[1].IsAvailable)
	assert.True(t, views[2].IsAvailable, "12:00 booking only touches the window")
	assert.Equal(t, model.StationAvailable, views[2].CurrentStatus)
}

func TestSearch_ExplicitWindow(t *testing.T) {
	svc := NewStationService(stationFixture(), clock.NewFixed(at(10, 0)), 2*time.Hour)
	start, end := at(13, 0), at(15, 0)

	got, err := svc.Search(context.Background(), SearchInput{Start: &start, End: &end})
	require.NoError(t, err)

	views := byID(got.Stations)
	assert.True(t, views[1].IsAvailable)
	assert.False(t, views[2].IsAvailable)
	assert.Equal(t, model.StationReserved, views[2].CurrentStatus)
	assert.Equal(t, model.StationInUse, views[1].CurrentStatus)
}

func TestSearch_RejectsBadInput(t *testing.T) {
	svc := NewStationService(stationFixture(), clock.NewFixed(at(10, 0)), 2*time.Hour)
	start, end := at(13, 0), at(13, 0)

	_, err := svc.Search(context.Background(), SearchInput{Start: &start, End: &end})
	assert.ErrorIs(t, err, ErrValidation)

	bogus := model.StationType("Arcade")
	_, err = svc.Search(context.Background(), SearchInput{Type: &bogus})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearch_FiltersByType(t *testing.T) {
	store := stationFixture()
	console := store.stations[2]
	console.Type = model.StationPlayStation
	store.stations[2] = console
	svc := NewStationService(store, clock.NewFixed(at(10, 0)), 2*time.Hour)
	ps := model.StationPlayStation

	got, err := svc.Search(context.Background(), SearchInput{Type: &ps})
	require.NoError(t, err)

	require.Len(t, got.Stations, 1)
	assert.Equal(t, uint64(2), got.Stations[0].ID)
}
