package offer

import (
	"context"

	"timebank/internal/api"
	"timebank/internal/auth"
	"timebank/internal/logger"
	"timebank/internal/metrics"
	"timebank/internal/user"
	"timebank/internal/wallet"
)

type Service interface {
	Create(ctx context.Context, caller auth.Identity, req OfferRequest) (*Offer, error)
	GetByID(ctx context.Context, id int64) (*Offer, error)
	ListActive(ctx context.Context, page api.PageRequest) (api.Page[Offer], error)
	List(ctx context.Context, page api.PageRequest) (api.Page[Offer], error)
	ListByOwner(ctx context.Context, ownerID int64, page api.PageRequest) (api.Page[Offer], error)
	ListMine(ctx context.Context, caller auth.Identity) ([]Offer, error)
	Update(ctx context.Context, caller auth.Identity, id int64, req OfferRequest) (*Offer, error)
	Activate(ctx context.Context, caller auth.Identity, id int64) error
	Deactivate(ctx context.Context, caller auth.Identity, id int64) error
}

// UserFinder is the part of user.Repository offers need.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

type service struct {
	repo  Repository
	users UserFinder
}

func NewService(repo Repository, users UserFinder) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, req OfferRequest) (*Offer, error) {
	if err := wallet.ValidateAmount(req.HoursRate); err != nil {
		return nil, ErrInvalidHoursRate
	}

	owner, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	o := &Offer{
		OwnerID:     owner.ID,
		OwnerName:   owner.FullName(),
		Title:       req.Title,
		Description: req.Description,
		HoursRate:   req.HoursRate,
		Status:      StatusActive,
		Available:   true,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	metrics.RecordOfferCreated()
	logger.Info("offer created", "offer_id", o.ID, "owner_id", o.OwnerID)
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Offer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListActive(ctx context.Context, page api.PageRequest) (api.Page[Offer], error) {
	offers, total, err := s.repo.ListActive(ctx, page)
	if err != nil {
		return api.Page[Offer]{}, err
	}
	return api.NewPage(offers, page, total), nil
}

func (s *service) List(ctx context.Context, page api.PageRequest) (api.Page[Offer], error) {
	offers, total, err := s.repo.List(ctx, page)
	if err != nil {
		return api.Page[Offer]{}, err
	}
	return api.NewPage(offers, page, total), nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, page api.PageRequest) (api.Page[Offer], error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return api.Page[Offer]{}, err
	}

	offers, total, err := s.repo.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return api.Page[Offer]{}, err
	}
	return api.NewPage(offers, page, total), nil
}

func (s *service) ListMine(ctx context.Context, caller auth.Identity) ([]Offer, error) {
	return s.repo.ListAllByOwner(ctx, caller.UserID)
}

func (s *service) Update(ctx context.Context, caller auth.Identity, id int64, req OfferRequest) (*Offer, error) {
	if err := wallet.ValidateAmount(req.HoursRate); err != nil {
		return nil, ErrInvalidHoursRate
	}

	o, err := s.ownedOffer(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	o.Title = req.Title
	o.Description = req.Description
	o.HoursRate = req.HoursRate

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Activate(ctx context.Context, caller auth.Identity, id int64) error {
	o, err := s.ownedOffer(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := o.Activate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, o)
}

func (s *service) Deactivate(ctx context.Context, caller auth.Identity, id int64) error {
	o, err := s.ownedOffer(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := o.Deactivate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, o)
}

func (s *service) ownedOffer(ctx context.Context, caller auth.Identity, id int64) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != caller.UserID {
		return nil, ErrNotOwner
	}
	return o, nil
}
