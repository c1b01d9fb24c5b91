package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	TelegramID string    `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	IsAdmin    bool      `json:"is_admin"`
	IsBlocked  bool      `json:"is_blocked"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName mirrors what the storefront shows: username, else first name,
// else the raw id.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.TelegramID
}

type Repo struct {
	DB *pgxpool.Pool

	// AdminTelegramID decides is_admin at first-touch creation. The flag is
	// immutable afterwards.
	AdminTelegramID string
}

const userColumns = `telegram_id, COALESCE(username,''), COALESCE(first_name,''),
	COALESCE(last_name,''), is_admin, is_blocked, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.IsAdmin, &u.IsBlocked, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// Authenticate creates the user on first touch and returns the stored record
// otherwise. Concurrent first-touch requests are resolved by the primary key:
// on conflict nothing is written and the winner's row is returned.
func (r *Repo) Authenticate(ctx context.Context, telegramID, username, firstName, lastName string) (User, error) {
	isAdmin := telegramID == r.AdminTelegramID && telegramID != ""
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(telegram_id, username, first_name, last_name, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (telegram_id) DO NOTHING`,
		telegramID, username, firstName, lastName, isAdmin, time.Now().UTC())
	if err != nil {
		return User{}, err
	}
	return r.Get(ctx, telegramID)
}

func (r *Repo) Get(ctx context.Context, telegramID string) (User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id=$1`, telegramID))
}

// IsAdmin re-reads the flag per call; admin rights are never cached.
func (r *Repo) IsAdmin(ctx context.Context, telegramID string) (bool, error) {
	u, err := r.Get(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

// IsBlocked implements the cart store's user gate. Unknown users are not
// blocked: the cart materializes lazily before /auth/telegram is called.
func (r *Repo) IsBlocked(ctx context.Context, telegramID string) (bool, error) {
	u, err := r.Get(ctx, telegramID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsBlocked, nil
}

func (r *Repo) SetBlocked(ctx context.Context, telegramID string, blocked bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET is_blocked=$2 WHERE telegram_id=$1`, telegramID, blocked)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
