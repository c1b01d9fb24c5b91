package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `order_id, user_telegram_id, COALESCE(user_name,''), items,
	total_amount, markup_percentage, status, delivery_address, hidden,
	created_at, confirmed_at, COALESCE(confirmed_by_admin,''),
	COALESCE(admin_comment,''), COALESCE(status_comment,''), updated_at,
	COALESCE(supplier_order_id,''), COALESCE(supplier_order_number,'')`

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.OrderID, &o.UserTelegramID, &o.UserName, &o.Items,
		&o.TotalAmount, &o.MarkupPercentage, &status, &o.DeliveryAddress, &o.Hidden,
		&o.CreatedAt, &o.ConfirmedAt, &o.ConfirmedByAdmin,
		&o.AdminComment, &o.StatusComment, &o.UpdatedAt,
		&o.SupplierOrderID, &o.SupplierOrderNumber)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}

// Create inserts the order. When externalID is set the insert is idempotent:
// a duplicate submit returns the already stored order with existed=true, the
// uniqueness being enforced by the orders.external_id index so two racing
// checkouts resolve to one winner.
func (r *Repo) Create(ctx context.Context, o Order, externalID string) (Order, bool, error) {
	if externalID != "" {
		existing, err := r.getByExternalID(ctx, externalID)
		if err == nil {
			return existing, true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Order{}, false, err
		}
	}

	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(order_id, external_id, user_telegram_id, user_name, items,
			total_amount, markup_percentage, status, delivery_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.OrderID, nullIfEmpty(externalID), o.UserTelegramID, nullIfEmpty(o.UserName), o.Items,
		o.TotalAmount, o.MarkupPercentage, string(o.Status), o.DeliveryAddress, o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && externalID != "" {
			// lost the duplicate-submit race; the winner's row is the answer
			existing, gerr := r.getByExternalID(ctx, externalID)
			if gerr != nil {
				return Order{}, false, gerr
			}
			return existing, true, nil
		}
		return Order{}, false, err
	}
	return o, false, nil
}

func (r *Repo) getByExternalID(ctx context.Context, externalID string) (Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE external_id=$1`, externalID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// Get fetches one order. A non-empty ownerID restricts the lookup to that
// owner; a foreign order id then comes back as ErrNotFound, never as a
// permission error, so order ids are not probeable.
func (r *Repo) Get(ctx context.Context, orderID, ownerID string) (Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_id=$1`
	args := []any{orderID}
	if ownerID != "" {
		q += ` AND user_telegram_id=$2`
		args = append(args, ownerID)
	}
	o, err := scanOrder(r.DB.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE user_telegram_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *Repo) ListPending(ctx context.Context, limit int) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE status=$1 ORDER BY created_at DESC LIMIT $2`,
		string(StatusPendingConfirmation), limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListAll returns orders for the admin view, newest first. Hidden orders are
// excluded unless includeHidden is set; status="" means no status filter.
func (r *Repo) ListAll(ctx context.Context, status Status, includeHidden bool, limit int) ([]Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, string(status))
		q += ` AND status=$1`
	}
	if !includeHidden {
		q += ` AND NOT hidden`
	}
	args = append(args, limit)
	q += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// Confirm moves pending_confirmation -> confirmed. The precondition is
// re-checked at write time: the UPDATE matches only the pending row, so of
// two racing admins exactly one wins and the loser sees ErrInvalidTransition.
func (r *Repo) Confirm(ctx context.Context, orderID, adminID, comment string, now time.Time) (Order, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET status=$2, confirmed_at=$3, confirmed_by_admin=$4,
		    admin_comment=COALESCE(NULLIF($5,''), admin_comment), updated_at=$3
		WHERE order_id=$1 AND status=$6
		RETURNING `+orderColumns,
		orderID, string(StatusConfirmed), now, adminID, comment,
		string(StatusPendingConfirmation))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, r.transitionFailure(ctx, orderID)
	}
	return o, err
}

// Reject moves pending_confirmation -> cancelled, storing the reason.
func (r *Repo) Reject(ctx context.Context, orderID, adminID, reason string, now time.Time) (Order, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET status=$2, admin_comment=$3, confirmed_by_admin=$4, updated_at=$5
		WHERE order_id=$1 AND status=$6
		RETURNING `+orderColumns,
		orderID, string(StatusCancelled), reason, adminID, now,
		string(StatusPendingConfirmation))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, r.transitionFailure(ctx, orderID)
	}
	return o, err
}

// UpdateStatus moves an already-confirmed order to any post-confirmation
// status. Pending and terminal orders never match the WHERE clause.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status, comment string, now time.Time) (Order, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET status=$2, status_comment=COALESCE(NULLIF($3,''), status_comment), updated_at=$4
		WHERE order_id=$1 AND status NOT IN ($5, $6, $7)
		RETURNING `+orderColumns,
		orderID, string(to), comment, now,
		string(StatusPendingConfirmation), string(StatusCompleted), string(StatusCancelled))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, r.transitionFailure(ctx, orderID)
	}
	return o, err
}

// SetSupplierOrder records the supplier's identifiers after the order has
// been placed upstream. Only a confirmed order not yet submitted matches, so
// a double submit or a submit on the wrong status changes nothing.
func (r *Repo) SetSupplierOrder(ctx context.Context, orderID, supplierID, supplierNumber string, now time.Time) (Order, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET supplier_order_id=$2, supplier_order_number=$3, updated_at=$4
		WHERE order_id=$1 AND status=$5 AND supplier_order_id IS NULL
		RETURNING `+orderColumns,
		orderID, supplierID, supplierNumber, now, string(StatusConfirmed))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, gerr := r.Get(ctx, orderID, ""); gerr != nil {
			return Order{}, gerr
		}
		return Order{}, ErrInvalidState
	}
	return o, err
}

// Hide flags a completed order out of the default admin listing. Status and
// data stay intact.
func (r *Repo) Hide(ctx context.Context, orderID string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET hidden=TRUE WHERE order_id=$1 AND status=$2`,
		orderID, string(StatusCompleted))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.Get(ctx, orderID, ""); err != nil {
			return err
		}
		return ErrInvalidState
	}
	return nil
}

// transitionFailure classifies a zero-row CAS update: missing order vs
// precondition lost.
func (r *Repo) transitionFailure(ctx context.Context, orderID string) error {
	if _, err := r.Get(ctx, orderID, ""); err != nil {
		return err
	}
	return ErrInvalidTransition
}

type Stats struct {
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	ConfirmedOrders int             `json:"confirmed_orders"`
	CompletedOrders int             `json:"completed_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status=$1),
		       COUNT(*) FILTER (WHERE status=$2),
		       COUNT(*) FILTER (WHERE status=$3),
		       COUNT(*) FILTER (WHERE status=$4),
		       COALESCE(SUM(total_amount) FILTER (WHERE status<>$4), 0)
		FROM orders`,
		string(StatusPendingConfirmation), string(StatusConfirmed),
		string(StatusCompleted), string(StatusCancelled)).
		Scan(&s.TotalOrders, &s.PendingOrders, &s.ConfirmedOrders,
			&s.CompletedOrders, &s.CancelledOrders, &s.TotalRevenue)
	return s, err
}

// DeleteAll is the destructive reset escape hatch behind the admin surface.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders`)
	return ct.RowsAffected(), err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
