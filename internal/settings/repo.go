// Package settings holds the single process-wide markup record. It is read
// on every priced request and replaced wholesale on admin writes; no history
// is kept.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrMarkupOutOfRange = errors.New("markup percentage must be between 0 and 100")

type Markup struct {
	MarkupPercentage decimal.Decimal `json:"markup_percentage"`
	UpdatedAt        time.Time       `json:"updated_at"`
	UpdatedByAdmin   string          `json:"updated_by_admin"`
}

type Repo struct {
	DB *pgxpool.Pool

	// DefaultMarkup is served (and not persisted) until an admin writes the
	// record or Get materializes it.
	DefaultMarkup decimal.Decimal
}

// Current returns the markup percentage for pricing. Missing record falls
// back to the configured default.
func (r *Repo) Current(ctx context.Context) (decimal.Decimal, error) {
	var p decimal.Decimal
	err := r.DB.QueryRow(ctx, `SELECT markup_percentage FROM settings WHERE id=1`).Scan(&p)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.DefaultMarkup, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return p, nil
}

// Get returns the full record, materializing the default on first admin read.
func (r *Repo) Get(ctx context.Context, adminID string) (Markup, error) {
	var m Markup
	err := r.DB.QueryRow(ctx, `SELECT markup_percentage, updated_at, updated_by_admin FROM settings WHERE id=1`).
		Scan(&m.MarkupPercentage, &m.UpdatedAt, &m.UpdatedByAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.Update(ctx, r.DefaultMarkup, adminID)
	}
	return m, err
}

// Update validates the range and replaces the record.
func (r *Repo) Update(ctx context.Context, percentage decimal.Decimal, adminID string) (Markup, error) {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return Markup{}, ErrMarkupOutOfRange
	}
	m := Markup{
		MarkupPercentage: percentage,
		UpdatedAt:        time.Now().UTC(),
		UpdatedByAdmin:   adminID,
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO settings(id, markup_percentage, updated_at, updated_by_admin)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET markup_percentage=EXCLUDED.markup_percentage,
		    updated_at=EXCLUDED.updated_at,
		    updated_by_admin=EXCLUDED.updated_by_admin`,
		m.MarkupPercentage, m.UpdatedAt, m.UpdatedByAdmin)
	if err != nil {
		return Markup{}, err
	}
	return m, nil
}
