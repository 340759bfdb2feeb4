package offer

import (
	"context"

	"timebank/internal/api"
)

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id int64) (*Offer, error)
	List(ctx context.Context, page api.PageRequest) ([]Offer, int64, error)
	ListActive(ctx context.Context, page api.PageRequest) ([]Offer, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, page api.PageRequest) ([]Offer, int64, error)
	ListAllByOwner(ctx context.Context, ownerID int64) ([]Offer, error)
	Update(ctx context.Context, o *Offer) error
}
