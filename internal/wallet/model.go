package wallet

import (
	"time"

	"timebank/internal/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = apperr.InvalidArgument("amount must be positive with at most two decimal places")
	ErrInsufficientBalance = apperr.IllegalState("insufficient balance")
	ErrWalletNotFound      = apperr.NotFound("wallet not found")
)

// Wallet holds a user's hours. Balance is spendable; TotalEarned and TotalSpent only grow.
type Wallet struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Balance     decimal.Decimal `db:"balance" json:"balance" swaggertype:"string" example:"10.00"`
	TotalEarned decimal.Decimal `db:"total_earned" json:"total_earned" swaggertype:"string" example:"10.00"`
	TotalSpent  decimal.Decimal `db:"total_spent" json:"total_spent" swaggertype:"string" example:"0.00"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ValidateAmount accepts positive amounts with at most two fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

func (w *Wallet) HasBalance(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

func (w *Wallet) AddBalance(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	w.Balance = w.Balance.Add(amount)
	w.TotalEarned = w.TotalEarned.Add(amount)
	return nil
}

func (w *Wallet) DeductBalance(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !w.HasBalance(amount) {
		return ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	w.TotalSpent = w.TotalSpent.Add(amount)
	return nil
}

// ReleaseBalance returns previously reserved hours. Audit counters stay untouched.
func (w *Wallet) ReleaseBalance(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}
