package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// StationRepo reads gaming stations.  Writes happen through ShopRepo when a
// shop is seeded.
type StationRepo struct {
	db *sql.DB
}

func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// StationFilter narrows a station query.  Nil fields are ignored.
type StationFilter struct {
	ShopID             *uint64
	Type               *model.StationType
	IncludeMaintenance bool
}

// StationRow is a station joined with its shop name.
type StationRow struct {
	model.Station
	ShopName string
}

const stationColumns = `gs.id, gs.shop_id, gs.name, gs.type, gs.status, gs.hourly_rate, gs.specifications, gs.created_at`

func scanStation(row interface{ Scan(...any) error }, extra ...any) (*model.Station, error) {
	var (
		st    model.Station
		specs sql.NullString
	)
	dest := []any{&st.ID, &st.ShopID, &st.Name, &st.Type, &st.Status, &st.HourlyRate, &specs, &st.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if specs.Valid {
		st.Specifications = &specs.String
	}
	return &st, nil
}

// List returns stations with their shop name ordered by shop then station
// id.  Maintenance stations are excluded unless requested.
func (r *StationRepo) List(ctx context.Context, f StationFilter) ([]StationRow, error) {
	q := `SELECT ` + stationColumns + `, s.name FROM gaming_stations gs JOIN shops s ON s.id = gs.shop_id WHERE 1=1`
	var args []any
	if !f.IncludeMaintenance {
		q += ` AND gs.status <> ?`
		args = append(args, model.StationMaintenance)
	}
	if f.ShopID != nil {
		q += ` AND gs.shop_id = ?`
		args = append(args, *f.ShopID)
	}
	if f.Type != nil {
		q += ` AND gs.type = ?`
		args = append(args, *f.Type)
	}
	q += ` ORDER BY gs.shop_id, gs.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []StationRow{}
	for rows.Next() {
		var shopName string
		st, err := scanStation(rows, &shopName)
		if err != nil {
			return nil, err
		}
		out = append(out, StationRow{Station: *st, ShopName: shopName})
	}
	return out, rows.Err()
}

// GetByID fetches a single station.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (*model.Station, error) {
	st, err := scanStation(r.db.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM gaming_stations gs WHERE gs.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

// OpenReservations returns, per station, the non-cancelled reservations that
// end after since.  Stations without any are absent from the map.
func (r *StationRepo) OpenReservations(ctx context.Context, stationIDs []uint64, since time.Time) (map[uint64][]model.Reservation, error) {
	out := make(map[uint64][]model.Reservation, len(stationIDs))
	if len(stationIDs) == 0 {
		return out, nil
	}
	in, args := inClause(stationIDs)
	q := `SELECT ` + reservationColumns + ` FROM reservations r
	      WHERE r.station_id IN (` + in + `) AND r.status <> ? AND r.end_time > ?
	      ORDER BY r.station_id, r.start_time, r.id`
	args = append(args, model.ReservationCancelled, since)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("open reservations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out[res.StationID] = append(out[res.StationID], *res)
	}
	return out, rows.Err()
}

func insertStations(ctx context.Context, q querier, stations []model.Station) error {
	if len(stations) == 0 {
		return nil
	}
	query := `INSERT INTO gaming_stations (shop_id, name, type, status, hourly_rate, specifications, created_at) VALUES `
	args := make([]any, 0, len(stations)*7)
	for i, st := range stations {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, st.ShopID, st.Name, st.Type, st.Status, st.HourlyRate, st.Specifications, st.CreatedAt)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert stations: %w", err)
	}
	return nil
}
