package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// ShopRepo encapsulates queries on the shops table.
type ShopRepo struct {
	db *sql.DB
}

func NewShopRepo(db *sql.DB) *ShopRepo { return &ShopRepo{db: db} }

const shopColumns = `id, name, address, city, country, phone_number, email, hourly_rate, is_active, owner_id, created_at`

func scanShop(row interface{ Scan(...any) error }) (*model.Shop, error) {
	var (
		s     model.Shop
		phone sql.NullString
		email sql.NullString
		owner sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.Country, &phone, &email,
		&s.HourlyRate, &s.IsActive, &owner, &s.CreatedAt); err != nil {
		return nil, err
	}
	if phone.Valid {
		s.PhoneNumber = &phone.String
	}
	if email.Valid {
		s.Email = &email.String
	}
	if owner.Valid {
		id := uint64(owner.Int64)
		s.OwnerID = &id
	}
	return &s, nil
}

func collectShops(rows *sql.Rows) ([]model.Shop, error) {
	defer rows.Close()
	out := []model.Shop{}
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListActive returns active shops, optionally filtered by exact city and
// country, ordered by name.
func (r *ShopRepo) ListActive(ctx context.Context, city, country string) ([]model.Shop, error) {
	q := `SELECT ` + shopColumns + ` FROM shops WHERE is_active = 1`
	var args []any
	if city != "" {
		q += ` AND city = ?`
		args = append(args, city)
	}
	if country != "" {
		q += ` AND country = ?`
		args = append(args, country)
	}
	q += ` ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectShops(rows)
}

// ListAll returns every shop ordered by name (admin view).
func (r *ShopRepo) ListAll(ctx context.Context) ([]model.Shop, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return collectShops(rows)
}

// GetByID fetches a shop regardless of its active flag.
func (r *ShopRepo) GetByID(ctx context.Context, id uint64) (*model.Shop, error) {
	s, err := scanShop(r.db.QueryRowContext(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// CreateWithStations inserts a shop and its initial stations in one
// transaction.  IDs and timestamps are written back into the arguments.
func (r *ShopRepo) CreateWithStations(ctx context.Context, s *model.Shop, stations []model.Station) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO shops (name, address, city, country, phone_number, email, hourly_rate, is_active, owner_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.Name, s.Address, s.City, s.Country, s.PhoneNumber, s.Email, s.HourlyRate, s.IsActive, s.OwnerID, s.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert shop: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		for i := range stations {
			stations[i].ShopID = s.ID
		}
		return insertStations(ctx, tx, stations)
	})
}

// AddStationsIfEmpty inserts stations for a shop that has none.  It returns
// ErrNotFound for an unknown shop and ErrConflict when stations exist.
func (r *ShopRepo) AddStationsIfEmpty(ctx context.Context, shopID uint64, stations []model.Station) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		var id uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM shops WHERE id = ? FOR UPDATE`, shopID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM gaming_stations WHERE shop_id = ?`, shopID).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		for i := range stations {
			stations[i].ShopID = shopID
		}
		return insertStations(ctx, tx, stations)
	})
}
