// Package activity is the append-only log of user actions: searches and
// cart mutations. Entries are never mutated, only appended or purged by the
// admin reset.
package activity

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Type string

const (
	TypeTireSearch   Type = "tire_search"
	TypeDiskSearch   Type = "disk_search"
	TypeCarSelection Type = "car_selection"
	TypeOrderCreated Type = "order_created"
	TypeCartAdd      Type = "cart_add"
	TypeCartRemove   Type = "cart_remove"
)

type Entry struct {
	ID           int64          `json:"id"`
	TelegramID   string         `json:"telegram_id"`
	Username     string         `json:"username,omitempty"`
	Type         Type           `json:"activity_type"`
	SearchParams map[string]any `json:"search_params,omitempty"`
	ResultCount  *int           `json:"result_count,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

type Repo struct{ DB *pgxpool.Pool }

// Log appends an entry. Logging is advisory: failures are reported to the
// server log and swallowed so they never fail the user action.
func (r *Repo) Log(ctx context.Context, e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO activity_logs(telegram_id, username, activity_type, search_params, result_count, ts)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.TelegramID, e.Username, string(e.Type), e.SearchParams, e.ResultCount, e.Timestamp)
	if err != nil {
		log.Printf("activity log: %v", err)
	}
}

func (r *Repo) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, telegram_id, COALESCE(username,''), activity_type, search_params, result_count, ts
		FROM activity_logs ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var typ string
		if err := rows.Scan(&e.ID, &e.TelegramID, &e.Username, &typ, &e.SearchParams, &e.ResultCount, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Type = Type(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteAll backs the destructive admin reset.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM activity_logs`)
	return ct.RowsAffected(), err
}
