package admin

import (
	"context"
	"strings"
	"time"

	"timebank/internal/api"
	"timebank/internal/auth"
	"timebank/internal/db"
	"timebank/internal/logger"
	"timebank/internal/transaction"
	"timebank/internal/user"
)

type Service interface {
	// CreateAdmin is open while no admin exists; afterwards caller must be an admin.
	CreateAdmin(ctx context.Context, caller *auth.Identity, req user.RegisterRequest) (*user.AuthResponse, error)
	ListUsers(ctx context.Context, actor auth.Identity, page api.PageRequest) (api.Page[user.User], error)
	GetUser(ctx context.Context, actor auth.Identity, userID int64) (*user.Profile, error)
	ActivateUser(ctx context.Context, actor auth.Identity, userID int64) (*user.User, error)
	DeactivateUser(ctx context.Context, actor auth.Identity, userID int64) (*user.User, error)
	UpdateRole(ctx context.Context, actor auth.Identity, userID int64, role string) (*user.User, error)

	ListTransactions(ctx context.Context, actor auth.Identity, page api.PageRequest) (api.Page[transaction.Transaction], error)
	GetTransaction(ctx context.Context, actor auth.Identity, id int64) (*transaction.Transaction, error)
	ListUserTransactions(ctx context.Context, actor auth.Identity, userID int64, page api.PageRequest) (api.Page[transaction.Transaction], error)
	ListTransactionsByType(ctx context.Context, actor auth.Identity, rawType string, page api.PageRequest) (api.Page[transaction.Transaction], error)
	ListTransactionsByDateRange(ctx context.Context, actor auth.Identity, from, to time.Time, page api.PageRequest) (api.Page[transaction.Transaction], error)
}

// Accounts is the part of user.Service admin operations reuse.
type Accounts interface {
	CreateAccount(ctx context.Context, req user.RegisterRequest, role string) (*user.AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*user.Profile, error)
}

type service struct {
	users        user.Repository
	accounts     Accounts
	transactions transaction.Service
	tx           db.Transactor
}

func NewService(users user.Repository, accounts Accounts, transactions transaction.Service, tx db.Transactor) Service {
	return &service{users: users, accounts: accounts, transactions: transactions, tx: tx}
}

func requireAdmin(actor auth.Identity) error {
	if !actor.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func (s *service) CreateAdmin(ctx context.Context, caller *auth.Identity, req user.RegisterRequest) (*user.AuthResponse, error) {
	admins, err := s.users.CountByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if admins > 0 && (caller == nil || !caller.IsAdmin()) {
		return nil, ErrBootstrapClosed
	}

	resp, err := s.accounts.CreateAccount(ctx, req, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if admins == 0 {
		logger.Info("bootstrap admin created", "user_id", resp.User.ID)
	} else {
		logger.Info("admin created", "user_id", resp.User.ID, "created_by", caller.UserID)
	}
	return resp, nil
}

func (s *service) ListUsers(ctx context.Context, actor auth.Identity, page api.PageRequest) (api.Page[user.User], error) {
	if err := requireAdmin(actor); err != nil {
		return api.Page[user.User]{}, err
	}

	users, total, err := s.users.List(ctx, page)
	if err != nil {
		return api.Page[user.User]{}, err
	}
	return api.NewPage(users, page, total), nil
}

func (s *service) GetUser(ctx context.Context, actor auth.Identity, userID int64) (*user.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.accounts.GetProfile(ctx, userID)
}

func (s *service) ActivateUser(ctx context.Context, actor auth.Identity, userID int64) (*user.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	u, err := s.users.SetActive(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	logger.Info("user activated", "user_id", userID, "admin_id", actor.UserID)
	return u, nil
}

func (s *service) DeactivateUser(ctx context.Context, actor auth.Identity, userID int64) (*user.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.Role == auth.RoleAdmin {
		return nil, ErrCannotDeactivateAdmin
	}

	u, err := s.users.SetActive(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	logger.Info("user deactivated", "user_id", userID, "admin_id", actor.UserID)
	return u, nil
}

func (s *service) UpdateRole(ctx context.Context, actor auth.Identity, userID int64, role string) (*user.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	role = strings.ToUpper(strings.TrimSpace(role))
	if !auth.ValidRole(role) {
		return nil, user.ErrInvalidRole
	}
	if userID == actor.UserID && role != auth.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	var updated *user.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		target, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		if target.Role == auth.RoleAdmin && role != auth.RoleAdmin {
			admins, err := s.users.LockAdminIDs(ctx)
			if err != nil {
				return err
			}
			if len(admins) <= 1 {
				return ErrLastAdmin
			}
		}

		updated, err = s.users.UpdateRole(ctx, userID, role)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user role updated", "user_id", userID, "role", role, "admin_id", actor.UserID)
	return updated, nil
}

func (s *service) ListTransactions(ctx context.Context, actor auth.Identity, page api.PageRequest) (api.Page[transaction.Transaction], error) {
	if err := requireAdmin(actor); err != nil {
		return api.Page[transaction.Transaction]{}, err
	}
	return s.transactions.List(ctx, page)
}

func (s *service) GetTransaction(ctx context.Context, actor auth.Identity, id int64) (*transaction.Transaction, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.transactions.GetByID(ctx, id)
}

func (s *service) ListUserTransactions(ctx context.Context, actor auth.Identity, userID int64, page api.PageRequest) (api.Page[transaction.Transaction], error) {
	if err := requireAdmin(actor); err != nil {
		return api.Page[transaction.Transaction]{}, err
	}
	return s.transactions.ListByUser(ctx, userID, page)
}

func (s *service) ListTransactionsByType(ctx context.Context, actor auth.Identity, rawType string, page api.PageRequest) (api.Page[transaction.Transaction], error) {
	if err := requireAdmin(actor); err != nil {
		return api.Page[transaction.Transaction]{}, err
	}
	return s.transactions.ListByType(ctx, rawType, page)
}

func (s *service) ListTransactionsByDateRange(ctx context.Context, actor auth.Identity, from, to time.Time, page api.PageRequest) (api.Page[transaction.Transaction], error) {
	if err := requireAdmin(actor); err != nil {
		return api.Page[transaction.Transaction]{}, err
	}
	return s.transactions.ListByDateRange(ctx, from, to, page)
}
