package transaction

import (
	"strings"
	"time"

	"timebank/internal/apperr"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeReserve Type = "RESERVE"
	TypeCommit  Type = "COMMIT"
	TypeRelease Type = "RELEASE"
	TypeEarn    Type = "EARN"
	TypeRefund  Type = "REFUND"
)

const StatusCompleted = "COMPLETED"

var (
	ErrTransactionNotFound = apperr.NotFound("transaction not found")
	ErrInvalidType         = apperr.InvalidArgument("invalid transaction type")
	ErrInvalidDateRange    = apperr.InvalidArgument("start date must not be after end date")
)

// Transaction is a write-once audit row. Nothing in this package updates or deletes one.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	UserEmail   string          `db:"user_email" json:"user_email,omitempty"`
	UserName    string          `db:"user_name" json:"user_name,omitempty"`
	Type        Type            `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount" swaggertype:"string" example:"4.00"`
	BookingID   *int64          `db:"booking_id" json:"booking_id,omitempty"`
	Description string          `db:"description" json:"description"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// ParseType accepts any casing of the five known types.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TypeReserve, TypeCommit, TypeRelease, TypeEarn, TypeRefund:
		return t, nil
	}
	return "", ErrInvalidType
}
