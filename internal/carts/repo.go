package carts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserGate answers whether a user may mutate their cart. Checked per call so
// an admin block takes effect immediately.
type UserGate interface {
	IsBlocked(ctx context.Context, telegramID string) (bool, error)
}

type Store struct {
	DB   *pgxpool.Pool
	Gate UserGate
}

// GetOrCreate returns the user's cart, materializing an empty one on first
// read. The insert is conflict-tolerant so concurrent first reads both
// succeed.
func (s *Store) GetOrCreate(ctx context.Context, telegramID string) (Cart, error) {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO carts(telegram_id) VALUES ($1)
		ON CONFLICT (telegram_id) DO NOTHING`, telegramID)
	if err != nil {
		return Cart{}, err
	}
	c := Cart{TelegramID: telegramID}
	err = s.DB.QueryRow(ctx, `SELECT items, updated_at FROM carts WHERE telegram_id=$1`,
		telegramID).Scan(&c.Items, &c.UpdatedAt)
	return c, err
}

func (s *Store) Add(ctx context.Context, telegramID string, line Line) (Cart, error) {
	return s.mutate(ctx, telegramID, true, func(items []Line) ([]Line, error) {
		return AddLine(items, line)
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, telegramID, code string, warehouseID, quantity int) (Cart, error) {
	return s.mutate(ctx, telegramID, false, func(items []Line) ([]Line, error) {
		return UpdateQuantity(items, code, warehouseID, quantity)
	})
}

func (s *Store) Remove(ctx context.Context, telegramID, code string, warehouseID int) (Cart, error) {
	return s.mutate(ctx, telegramID, true, func(items []Line) ([]Line, error) {
		return RemoveLine(items, code, warehouseID), nil
	})
}

func (s *Store) Clear(ctx context.Context, telegramID string) (Cart, error) {
	return s.mutate(ctx, telegramID, true, func([]Line) ([]Line, error) {
		return []Line{}, nil
	})
}

// mutate runs one cart mutation under the cart row lock: concurrent adds
// for the same user serialize instead of losing updates. createMissing
// materializes the cart for operations that are valid on an empty cart.
func (s *Store) mutate(ctx context.Context, telegramID string, createMissing bool, fn func([]Line) ([]Line, error)) (Cart, error) {
	if blocked, err := s.Gate.IsBlocked(ctx, telegramID); err != nil {
		return Cart{}, err
	} else if blocked {
		return Cart{}, ErrBlocked
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Cart{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if createMissing {
		if _, err := tx.Exec(ctx, `
			INSERT INTO carts(telegram_id) VALUES ($1)
			ON CONFLICT (telegram_id) DO NOTHING`, telegramID); err != nil {
			return Cart{}, err
		}
	}

	c := Cart{TelegramID: telegramID}
	err = tx.QueryRow(ctx, `SELECT items, updated_at FROM carts WHERE telegram_id=$1 FOR UPDATE`,
		telegramID).Scan(&c.Items, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, err
	}

	items, err := fn(c.Items)
	if err != nil {
		return Cart{}, err
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE carts SET items=$2, updated_at=$3 WHERE telegram_id=$1`,
		telegramID, items, now); err != nil {
		return Cart{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Cart{}, err
	}
	c.Items = items
	c.UpdatedAt = now
	return c, nil
}
