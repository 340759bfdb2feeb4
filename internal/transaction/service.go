package transaction

import (
	"context"
	"time"

	"timebank/internal/api"
)

type Service interface {
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	List(ctx context.Context, page api.PageRequest) (api.Page[Transaction], error)
	ListByUser(ctx context.Context, userID int64, page api.PageRequest) (api.Page[Transaction], error)
	ListByType(ctx context.Context, rawType string, page api.PageRequest) (api.Page[Transaction], error)
	ListByDateRange(ctx context.Context, from, to time.Time, page api.PageRequest) (api.Page[Transaction], error)
	ListByBooking(ctx context.Context, bookingID int64) ([]Transaction, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, page api.PageRequest) (api.Page[Transaction], error) {
	txs, total, err := s.repo.List(ctx, page)
	if err != nil {
		return api.Page[Transaction]{}, err
	}
	return api.NewPage(txs, page, total), nil
}

func (s *service) ListByUser(ctx context.Context, userID int64, page api.PageRequest) (api.Page[Transaction], error) {
	txs, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return api.Page[Transaction]{}, err
	}
	return api.NewPage(txs, page, total), nil
}

func (s *service) ListByType(ctx context.Context, rawType string, page api.PageRequest) (api.Page[Transaction], error) {
	txType, err := ParseType(rawType)
	if err != nil {
		return api.Page[Transaction]{}, err
	}

	txs, total, err := s.repo.ListByType(ctx, txType, page)
	if err != nil {
		return api.Page[Transaction]{}, err
	}
	return api.NewPage(txs, page, total), nil
}

func (s *service) ListByDateRange(ctx context.Context, from, to time.Time, page api.PageRequest) (api.Page[Transaction], error) {
	if from.After(to) {
		return api.Page[Transaction]{}, ErrInvalidDateRange
	}

	txs, total, err := s.repo.ListByDateRange(ctx, from, to, page)
	if err != nil {
		return api.Page[Transaction]{}, err
	}
	return api.NewPage(txs, page, total), nil
}

func (s *service) ListByBooking(ctx context.Context, bookingID int64) ([]Transaction, error) {
	return s.repo.ListByBooking(ctx, bookingID)
}
