package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"timebank/internal/api"
	"timebank/internal/db"

	"github.com/jmoiron/sqlx"
)

const bookingFrom = `
	FROM bookings b
	JOIN offers o ON o.id = b.offer_id
	JOIN users ow ON ow.id = o.owner_id
	JOIN users rq ON rq.id = b.requester_id
`

const selectBookings = `
	SELECT b.id, b.offer_id, o.title AS offer_title,
	       o.owner_id, ow.first_name || ' ' || ow.last_name AS owner_name, ow.email AS owner_email,
	       b.requester_id, rq.first_name || ' ' || rq.last_name AS requester_name, rq.email AS requester_email,
	       b.status, b.reserved_hours, b.transferred_hours, b.cancel_reason,
	       b.created_at, b.updated_at, b.confirmed_at, b.completed_at, b.canceled_at
` + bookingFrom

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (offer_id, requester_id, status, reserved_hours)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	row := db.Conn(ctx, r.db).QueryRowxContext(ctx, query, b.OfferID, b.RequesterID, b.Status, b.ReservedHours)
	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return r.getOne(ctx, selectBookings+` WHERE b.id = $1`, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Booking, error) {
	return r.getOne(ctx, selectBookings+` WHERE b.id = $1 FOR UPDATE OF b`, id)
}

func (r *repository) getOne(ctx context.Context, query string, id int64) (*Booking, error) {
	var b Booking
	err := db.Conn(ctx, r.db).GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) UpdateStatus(ctx context.Context, b *Booking, from Status) error {
	query := `
		UPDATE bookings
		SET status = $3, transferred_hours = $4, cancel_reason = $5,
		    confirmed_at = $6, completed_at = $7, canceled_at = $8, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at
	`

	err := db.Conn(ctx, r.db).GetContext(ctx, &b.UpdatedAt, query,
		b.ID, from, b.Status, b.TransferredHours, b.CancelReason,
		b.ConfirmedAt, b.CompletedAt, b.CanceledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaleBooking
	}
	return err
}

func (r *repository) ListByRequester(ctx context.Context, requesterID int64, page api.PageRequest) ([]Booking, int64, error) {
	return r.page(ctx, "b.requester_id = $1", page, requesterID)
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64, page api.PageRequest) ([]Booking, int64, error) {
	return r.page(ctx, "o.owner_id = $1", page, ownerID)
}

func (r *repository) ListByOffer(ctx context.Context, offerID int64, page api.PageRequest) ([]Booking, int64, error) {
	return r.page(ctx, "b.offer_id = $1", page, offerID)
}

func (r *repository) ListByStatus(ctx context.Context, status Status, page api.PageRequest) ([]Booking, int64, error) {
	return r.page(ctx, "b.status = $1", page, status)
}

func (r *repository) page(ctx context.Context, where string, page api.PageRequest, arg interface{}) ([]Booking, int64, error) {
	q := db.Conn(ctx, r.db)

	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*)`+bookingFrom+` WHERE `+where, arg); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	bookings := []Booking{}
	query := selectBookings + ` WHERE ` + where + ` ORDER BY b.created_at DESC, b.id DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &bookings, query, arg, page.Limit(), page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, total, nil
}
