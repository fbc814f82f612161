package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// TournamentTx is what a registration needs inside one transaction.
type TournamentTx interface {
	LockTournament(ctx context.Context, id uint64) (*model.Tournament, error)
	HasActiveRegistration(ctx context.Context, tournamentID, userID uint64) (bool, error)
	InsertRegistration(ctx context.Context, reg *model.TournamentRegistration) error
	IncrementParticipants(ctx context.Context, tournamentID uint64) error
}

// TournamentRepo provides access to tournaments and their registrations.
type TournamentRepo struct {
	db *sql.DB
}

func NewTournamentRepo(db *sql.DB) *TournamentRepo { return &TournamentRepo{db: db} }

const tournamentColumns = `t.id, t.shop_id, t.name, t.game, t.description, t.start_date, t.registration_deadline,
	t.max_participants, t.current_participants, t.entry_fee, t.prize_pool, t.status, t.image_url, t.created_at`

func scanTournament(row interface{ Scan(...any) error }, extra ...any) (*model.Tournament, error) {
	var (
		t     model.Tournament
		desc  sql.NullString
		image sql.NullString
	)
	dest := []any{&t.ID, &t.ShopID, &t.Name, &t.Game, &desc, &t.StartDate, &t.RegistrationDeadline,
		&t.MaxParticipants, &t.CurrentParticipants, &t.EntryFee, &t.PrizePool, &t.Status, &image, &t.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	if image.Valid {
		t.ImageURL = &image.String
	}
	return &t, nil
}

// List returns tournaments ordered by start date, optionally restricted to
// one status.
func (r *TournamentRepo) List(ctx context.Context, status *model.TournamentStatus) ([]model.Tournament, error) {
	q := `SELECT ` + tournamentColumns + `, s.name FROM tournaments t JOIN shops s ON s.id = t.shop_id`
	var args []any
	if status != nil {
		q += ` WHERE t.status = ?`
		args = append(args, *status)
	}
	q += ` ORDER BY t.start_date, t.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Tournament{}
	for rows.Next() {
		var shopName string
		t, err := scanTournament(rows, &shopName)
		if err != nil {
			return nil, err
		}
		t.ShopName = shopName
		out = append(out, *t)
	}
	return out, rows.Err()
}

// GetByID returns the tournament and the number of non-cancelled
// registrations.
func (r *TournamentRepo) GetByID(ctx context.Context, id uint64) (*model.Tournament, int, error) {
	var (
		shopName string
		count    int
	)
	t, err := scanTournament(r.db.QueryRowContext(ctx,
		`SELECT `+tournamentColumns+`, s.name,
		        (SELECT COUNT(*) FROM tournament_registrations tr WHERE tr.tournament_id = t.id AND tr.status <> ?)
		 FROM tournaments t JOIN shops s ON s.id = t.shop_id WHERE t.id = ?`,
		model.RegistrationCancelled, id), &shopName, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	t.ShopName = shopName
	return t, count, nil
}

// Create inserts a tournament and sets its ID.
func (r *TournamentRepo) Create(ctx context.Context, t *model.Tournament) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tournaments (shop_id, name, game, description, start_date, registration_deadline,
		   max_participants, current_participants, entry_fee, prize_pool, status, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ShopID, t.Name, t.Game, t.Description, t.StartDate, t.RegistrationDeadline,
		t.MaxParticipants, t.CurrentParticipants, t.EntryFee, t.PrizePool, t.Status, t.ImageURL, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// Delete removes a tournament together with its registrations and returns
// the deleted row so callers can clean up its image.
func (r *TournamentRepo) Delete(ctx context.Context, id uint64) (*model.Tournament, error) {
	var deleted *model.Tournament
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		t, err := scanTournament(tx.QueryRowContext(ctx,
			`SELECT `+tournamentColumns+` FROM tournaments t WHERE t.id = ? FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tournament_registrations WHERE tournament_id = ?`, id); err != nil {
			return fmt.Errorf("delete registrations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete tournament: %w", err)
		}
		deleted = t
		return nil
	})
	return deleted, err
}

// ListRegistrationsForUser returns a user's registrations, most recent
// first.
func (r *TournamentRepo) ListRegistrationsForUser(ctx context.Context, userID uint64) ([]model.RegistrationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tr.id, tr.tournament_id, tr.user_id, tr.status, tr.payment_amount, tr.registered_at,
		        t.name, t.game, t.start_date, t.status, s.name
		 FROM tournament_registrations tr
		 JOIN tournaments t ON t.id = tr.tournament_id
		 JOIN shops s ON s.id = t.shop_id
		 WHERE tr.user_id = ?
		 ORDER BY tr.registered_at DESC, tr.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RegistrationDetail{}
	for rows.Next() {
		var d model.RegistrationDetail
		if err := rows.Scan(&d.ID, &d.TournamentID, &d.UserID, &d.Status, &d.PaymentAmount, &d.RegisteredAt,
			&d.TournamentName, &d.Game, &d.StartDate, &d.TournamentStat, &d.ShopName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// WithinTx runs fn with a transactional view of tournaments.
func (r *TournamentRepo) WithinTx(ctx context.Context, fn func(tx TournamentTx) error) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&tournamentTx{tx: tx})
	})
}

type tournamentTx struct {
	tx *sql.Tx
}

func (t *tournamentTx) LockTournament(ctx context.Context, id uint64) (*model.Tournament, error) {
	tour, err := scanTournament(t.tx.QueryRowContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments t WHERE t.id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return tour, err
}

func (t *tournamentTx) HasActiveRegistration(ctx context.Context, tournamentID, userID uint64) (bool, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_registrations WHERE tournament_id = ? AND user_id = ? AND status <> ?`,
		tournamentID, userID, model.RegistrationCancelled).Scan(&n)
	return n > 0, err
}

// InsertRegistration adds a row without a uniqueness constraint: a user may
// hold cancelled entries next to a live one.  Duplicates are kept out by the
// tournament row lock plus HasActiveRegistration.
func (t *tournamentTx) InsertRegistration(ctx context.Context, reg *model.TournamentRegistration) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO tournament_registrations (tournament_id, user_id, status, payment_amount, registered_at)
		 VALUES (?, ?, ?, ?, ?)`,
		reg.TournamentID, reg.UserID, reg.Status, reg.PaymentAmount, reg.RegisteredAt)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	return nil
}

func (t *tournamentTx) IncrementParticipants(ctx context.Context, tournamentID uint64) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE tournaments SET current_participants = current_participants + 1
		 WHERE id = ? AND current_participants < max_participants`, tournamentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}
