package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timebank/internal/api"
	"timebank/internal/db"

	"github.com/jmoiron/sqlx"
)

const selectTransactions = `
	SELECT t.id, t.user_id, u.email AS user_email,
	       u.first_name || ' ' || u.last_name AS user_name,
	       t.type, t.amount, t.booking_id, t.description, t.status, t.created_at
	FROM transactions t
	JOIN users u ON u.id = t.user_id
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	if t.Status == "" {
		t.Status = StatusCompleted
	}

	query := `
		INSERT INTO transactions (user_id, type, amount, booking_id, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	row := db.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		t.UserID, t.Type, t.Amount, t.BookingID, t.Description, t.Status)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	var t Transaction
	err := db.Conn(ctx, r.db).GetContext(ctx, &t, selectTransactions+` WHERE t.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context, page api.PageRequest) ([]Transaction, int64, error) {
	return r.page(ctx, "", page)
}

func (r *repository) ListByUser(ctx context.Context, userID int64, page api.PageRequest) ([]Transaction, int64, error) {
	return r.page(ctx, "t.user_id = $1", page, userID)
}

func (r *repository) ListByType(ctx context.Context, txType Type, page api.PageRequest) ([]Transaction, int64, error) {
	return r.page(ctx, "t.type = $1", page, txType)
}

func (r *repository) ListByDateRange(ctx context.Context, from, to time.Time, page api.PageRequest) ([]Transaction, int64, error) {
	return r.page(ctx, "t.created_at BETWEEN $1 AND $2", page, from, to)
}

func (r *repository) ListByBooking(ctx context.Context, bookingID int64) ([]Transaction, error) {
	txs := []Transaction{}
	err := db.Conn(ctx, r.db).SelectContext(ctx, &txs,
		selectTransactions+` WHERE t.booking_id = $1 ORDER BY t.id`, bookingID)
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// page runs a filtered count and the matching page, newest first. Filter placeholders
// must be numbered from $1 in the order of args.
func (r *repository) page(ctx context.Context, where string, page api.PageRequest, args ...interface{}) ([]Transaction, int64, error) {
	q := db.Conn(ctx, r.db)

	filter := ""
	if where != "" {
		filter = " WHERE " + where
	}

	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions t`+filter, args...); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("%s%s ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d",
		selectTransactions, filter, n+1, n+2)

	txs := []Transaction{}
	if err := q.SelectContext(ctx, &txs, query, append(args, page.Limit(), page.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}
