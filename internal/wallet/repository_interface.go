package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, userID int64, initialBalance decimal.Decimal) (*Wallet, error)
	GetByUserID(ctx context.Context, userID int64) (*Wallet, error)
	// GetByUserIDForUpdate locks the row until the surrounding transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*Wallet, error)
	Update(ctx context.Context, w *Wallet) error
}
