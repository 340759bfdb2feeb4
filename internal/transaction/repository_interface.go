package transaction

import (
	"context"
	"time"

	"timebank/internal/api"
)

// Repository is append-only: Create is the single write path.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	List(ctx context.Context, page api.PageRequest) ([]Transaction, int64, error)
	ListByUser(ctx context.Context, userID int64, page api.PageRequest) ([]Transaction, int64, error)
	ListByType(ctx context.Context, txType Type, page api.PageRequest) ([]Transaction, int64, error)
	ListByDateRange(ctx context.Context, from, to time.Time, page api.PageRequest) ([]Transaction, int64, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]Transaction, error)
}
