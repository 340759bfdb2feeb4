package offer

import (
	"time"

	"timebank/internal/apperr"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusArchived Status = "ARCHIVED"
)

var (
	ErrOfferNotFound    = apperr.NotFound("offer not found")
	ErrInvalidHoursRate = apperr.InvalidArgument("hours rate must be positive with at most two decimal places")
	ErrNotOwner         = apperr.Forbidden("only the offer owner can modify this offer")
	ErrOfferArchived    = apperr.IllegalState("archived offers cannot be changed")
)

type Offer struct {
	ID          int64           `db:"id" json:"id"`
	OwnerID     int64           `db:"owner_id" json:"owner_id"`
	OwnerName   string          `db:"owner_name" json:"owner_name"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	HoursRate   decimal.Decimal `db:"hours_rate" json:"hours_rate" swaggertype:"string" example:"1.50"`
	Status      Status          `db:"status" json:"status"`
	Available   bool            `db:"available" json:"available"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// IsAvailable reports whether the offer can take new bookings.
func (o *Offer) IsAvailable() bool {
	return o.Status == StatusActive && o.Available
}

func (o *Offer) Activate() error {
	if o.Status == StatusArchived {
		return ErrOfferArchived
	}
	o.Status = StatusActive
	o.Available = true
	return nil
}

func (o *Offer) Deactivate() error {
	if o.Status == StatusArchived {
		return ErrOfferArchived
	}
	o.Status = StatusInactive
	o.Available = false
	return nil
}

type OfferRequest struct {
	Title       string          `json:"title" binding:"required,max=255,singleline" example:"Calculus tutoring"`
	Description string          `json:"description" binding:"required,max=5000" example:"One-on-one help with integrals"`
	HoursRate   decimal.Decimal `json:"hours_rate" swaggertype:"string" example:"1.50"`
}
