package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// ReservationTx is the set of row operations a reservation lifecycle step
// performs inside one transaction.  Lock* methods take SELECT ... FOR UPDATE
// locks that are held until the transaction ends.
type ReservationTx interface {
	LockStation(ctx context.Context, stationID uint64) (*model.Station, error)
	OpenReservations(ctx context.Context, stationID uint64, since time.Time) ([]model.Reservation, error)
	LockUser(ctx context.Context, userID uint64) (*model.User, error)
	SetLoyaltyPoints(ctx context.Context, userID uint64, points int) error
	InsertReservation(ctx context.Context, r *model.Reservation) error
	LockReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	SetReservationStatus(ctx context.Context, id uint64, status model.ReservationStatus) error
}

// ReservationRepo provides access to the reservations table.  All
// timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `r.id, r.user_id, r.station_id, r.start_time, r.end_time, r.status, r.total_price, r.notes, r.created_at`

func scanReservation(row interface{ Scan(...any) error }, extra ...any) (*model.Reservation, error) {
	var (
		res   model.Reservation
		notes sql.NullString
	)
	dest := []any{&res.ID, &res.UserID, &res.StationID, &res.StartTime, &res.EndTime,
		&res.Status, &res.TotalPrice, &notes, &res.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if notes.Valid {
		res.Notes = &notes.String
	}
	return &res, nil
}

// WithinTx runs fn with a transactional view of the booking tables.
func (r *ReservationRepo) WithinTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&reservationTx{tx: tx})
	})
}

// ListForUser returns a user's reservations with station and shop names,
// newest start first.  Completed ones are skipped when hideCompleted is set.
func (r *ReservationRepo) ListForUser(ctx context.Context, userID uint64, hideCompleted bool) ([]model.ReservationDetail, error) {
	q := `SELECT ` + reservationColumns + `, gs.name, gs.type, s.id, s.name
	      FROM reservations r
	      JOIN gaming_stations gs ON gs.id = r.station_id
	      JOIN shops s ON s.id = gs.shop_id
	      WHERE r.user_id = ?`
	args := []any{userID}
	if hideCompleted {
		q += ` AND r.status <> ?`
		args = append(args, model.ReservationCompleted)
	}
	q += ` ORDER BY r.start_time DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReservationDetail{}
	for rows.Next() {
		var d model.ReservationDetail
		res, err := scanReservation(rows, &d.StationName, &d.StationType, &d.ShopID, &d.ShopName)
		if err != nil {
			return nil, err
		}
		d.Reservation = *res
		out = append(out, d)
	}
	return out, rows.Err()
}

type reservationTx struct {
	tx *sql.Tx
}

// LockStation serializes every create against one station until commit.
func (t *reservationTx) LockStation(ctx context.Context, stationID uint64) (*model.Station, error) {
	st, err := scanStation(t.tx.QueryRowContext(ctx,
		`SELECT `+stationColumns+` FROM gaming_stations gs WHERE gs.id = ? FOR UPDATE`, stationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

func (t *reservationTx) OpenReservations(ctx context.Context, stationID uint64, since time.Time) ([]model.Reservation, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations r
		 WHERE r.station_id = ? AND r.status <> ? AND r.end_time > ?
		 ORDER BY r.start_time, r.id`,
		stationID, model.ReservationCancelled, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (t *reservationTx) LockUser(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? FOR UPDATE`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (t *reservationTx) SetLoyaltyPoints(ctx context.Context, userID uint64, points int) error {
	if points < 0 {
		return fmt.Errorf("negative loyalty balance %d for user %d", points, userID)
	}
	_, err := t.tx.ExecContext(ctx, `UPDATE users SET loyalty_points = ? WHERE id = ?`, points, userID)
	return err
}

func (t *reservationTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, station_id, start_time, end_time, status, total_price, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.StationID, r.StartTime, r.EndTime, r.Status, r.TotalPrice, r.Notes, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

func (t *reservationTx) LockReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(t.tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (t *reservationTx) SetReservationStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	return err
}
