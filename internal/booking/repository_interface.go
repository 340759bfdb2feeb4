package booking

import (
	"context"

	"timebank/internal/api"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	// GetForUpdate locks the booking row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Booking, error)
	// UpdateStatus persists a transition and fails with ErrStaleBooking unless the
	// stored status still equals from.
	UpdateStatus(ctx context.Context, b *Booking, from Status) error
	ListByRequester(ctx context.Context, requesterID int64, page api.PageRequest) ([]Booking, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, page api.PageRequest) ([]Booking, int64, error)
	ListByOffer(ctx context.Context, offerID int64, page api.PageRequest) ([]Booking, int64, error)
	ListByStatus(ctx context.Context, status Status, page api.PageRequest) ([]Booking, int64, error)
}
