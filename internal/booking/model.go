package booking

import (
	"strings"
	"time"

	"timebank/internal/apperr"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

const DefaultCancelReason = "No reason provided"

var (
	ErrBookingNotFound   = apperr.NotFound("booking not found")
	ErrInvalidStatus     = apperr.InvalidArgument("invalid booking status")
	ErrInvalidHours      = apperr.InvalidArgument("hours must be positive with at most two decimal places")
	ErrOfferUnavailable  = apperr.IllegalState("offer is not available")
	ErrSelfBooking       = apperr.IllegalState("cannot book your own offer")
	ErrNotPending        = apperr.IllegalState("only pending bookings can be confirmed")
	ErrNotConfirmed      = apperr.IllegalState("only confirmed bookings can be completed")
	ErrNotCancelable     = apperr.IllegalState("this booking cannot be canceled")
	ErrStaleBooking      = apperr.IllegalState("booking was changed by another request")
	ErrNotOfferOwner     = apperr.Forbidden("only the offer owner can perform this action")
	ErrNotParticipant    = apperr.Forbidden("only the requester or the offer owner can cancel this booking")
	ErrInsufficientHours = apperr.IllegalState("insufficient balance to confirm booking")
)

// Booking carries the row plus the offer and participant fields every read joins in.
type Booking struct {
	ID               int64               `db:"id" json:"id"`
	OfferID          int64               `db:"offer_id" json:"offer_id"`
	OfferTitle       string              `db:"offer_title" json:"offer_title"`
	OwnerID          int64               `db:"owner_id" json:"owner_id"`
	OwnerName        string              `db:"owner_name" json:"owner_name"`
	OwnerEmail       string              `db:"owner_email" json:"-"`
	RequesterID      int64               `db:"requester_id" json:"requester_id"`
	RequesterName    string              `db:"requester_name" json:"requester_name"`
	RequesterEmail   string              `db:"requester_email" json:"-"`
	Status           Status              `db:"status" json:"status"`
	ReservedHours    decimal.Decimal     `db:"reserved_hours" json:"reserved_hours" swaggertype:"string" example:"2.00"`
	TransferredHours decimal.NullDecimal `db:"transferred_hours" json:"transferred_hours" swaggertype:"string"`
	CancelReason     *string             `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updated_at"`
	ConfirmedAt      *time.Time          `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CompletedAt      *time.Time          `db:"completed_at" json:"completed_at,omitempty"`
	CanceledAt       *time.Time          `db:"canceled_at" json:"canceled_at,omitempty"`
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrNotPending
	}
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrNotConfirmed
	}
	b.Status = StatusCompleted
	b.TransferredHours = decimal.NewNullDecimal(b.ReservedHours)
	b.CompletedAt = &now
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if !b.CanBeCanceled() {
		return ErrNotCancelable
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultCancelReason
	}
	b.Status = StatusCanceled
	b.CancelReason = &reason
	b.CanceledAt = &now
	return nil
}

func (b *Booking) CanBeCanceled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

func (b *Booking) IsParticipant(userID int64) bool {
	return b.RequesterID == userID || b.OwnerID == userID
}

type CreateRequest struct {
	OfferID int64 `json:"offer_id" binding:"required,gt=0" example:"1"`
	// Hours defaults to the offer's hours rate when omitted.
	Hours decimal.Decimal `json:"hours" swaggertype:"string" example:"2.00"`
}
