package wallet

import (
	"context"
	"database/sql"
	"errors"

	"timebank/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, balance, total_earned, total_spent, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID int64, initialBalance decimal.Decimal) (*Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance, total_earned, total_spent)
		VALUES ($1, $2, $2, 0)
		RETURNING ` + walletColumns

	var w Wallet
	if err := db.Conn(ctx, r.db).QueryRowxContext(ctx, query, userID, initialBalance).StructScan(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int64) (*Wallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
}

func (r *repository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*Wallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *repository) get(ctx context.Context, query string, userID int64) (*Wallet, error) {
	var w Wallet
	err := db.Conn(ctx, r.db).GetContext(ctx, &w, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) Update(ctx context.Context, w *Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $1, total_earned = $2, total_spent = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := db.Conn(ctx, r.db).GetContext(ctx, &w.UpdatedAt, query, w.Balance, w.TotalEarned, w.TotalSpent, w.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrWalletNotFound
	}
	return err
}
