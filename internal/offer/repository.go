package offer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"timebank/internal/api"
	"timebank/internal/db"

	"github.com/jmoiron/sqlx"
)

const selectOffers = `
	SELECT o.id, o.owner_id, u.first_name || ' ' || u.last_name AS owner_name,
	       o.title, o.description, o.hours_rate, o.status, o.available, o.created_at, o.updated_at
	FROM offers o
	JOIN users u ON u.id = o.owner_id
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Offer) error {
	query := `
		INSERT INTO offers (owner_id, title, description, hours_rate, status, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	row := db.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		o.OwnerID, o.Title, o.Description, o.HoursRate, o.Status, o.Available)
	return row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Offer, error) {
	var o Offer
	err := db.Conn(ctx, r.db).GetContext(ctx, &o, selectOffers+` WHERE o.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, page api.PageRequest) ([]Offer, int64, error) {
	return r.page(ctx, "", page)
}

func (r *repository) ListActive(ctx context.Context, page api.PageRequest) ([]Offer, int64, error) {
	return r.page(ctx, "o.status = $1 AND o.available", page, StatusActive)
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64, page api.PageRequest) ([]Offer, int64, error) {
	return r.page(ctx, "o.owner_id = $1", page, ownerID)
}

func (r *repository) ListAllByOwner(ctx context.Context, ownerID int64) ([]Offer, error) {
	offers := []Offer{}
	err := db.Conn(ctx, r.db).SelectContext(ctx, &offers,
		selectOffers+` WHERE o.owner_id = $1 ORDER BY o.created_at DESC, o.id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repository) Update(ctx context.Context, o *Offer) error {
	query := `
		UPDATE offers
		SET title = $2, description = $3, hours_rate = $4, status = $5, available = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := db.Conn(ctx, r.db).GetContext(ctx, &o.UpdatedAt, query,
		o.ID, o.Title, o.Description, o.HoursRate, o.Status, o.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOfferNotFound
	}
	return err
}

func (r *repository) page(ctx context.Context, where string, page api.PageRequest, args ...interface{}) ([]Offer, int64, error) {
	q := db.Conn(ctx, r.db)

	filter := ""
	if where != "" {
		filter = " WHERE " + where
	}

	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM offers o`+filter, args...); err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("%s%s ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d",
		selectOffers, filter, n+1, n+2)

	offers := []Offer{}
	if err := q.SelectContext(ctx, &offers, query, append(args, page.Limit(), page.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	return offers, total, nil
}
