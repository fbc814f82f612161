package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/utils"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, password_hash, first_name, last_name, loyalty_points, roles, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u     model.User
		roles string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.LoyaltyPoints, &roles, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Capabilities = model.ParseCapabilities(roles)
	return &u, nil
}

// NewUser is the input for Create.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Caps      model.Capability
	CreatedAt time.Time // stamped by the caller's clock
}

// Create hashes the password, inserts the user and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	now := in.CreatedAt.UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, loyalty_points, roles, is_active, created_at)
		 VALUES (?, ?, ?, ?, 0, ?, 1, ?)`,
		email, hash, in.FirstName, in.LastName, in.Caps.String(), now)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID: uint64(id), Email: email, PasswordHash: hash,
		FirstName: in.FirstName, LastName: in.LastName,
		Capabilities: in.Caps, IsActive: true, CreatedAt: now,
	}, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// ListPlain returns users without any capability, newest first.
func (r *UserRepo) ListPlain(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE roles = '' ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
