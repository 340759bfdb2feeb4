package wallet

import "context"

type Service interface {
	GetByUserID(ctx context.Context, userID int64) (*Wallet, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByUserID(ctx context.Context, userID int64) (*Wallet, error) {
	return s.repo.GetByUserID(ctx, userID)
}
