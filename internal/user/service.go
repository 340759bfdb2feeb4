package user

import (
	"context"
	"errors"
	"fmt"

	"timebank/internal/auth"
	"timebank/internal/db"
	"timebank/internal/logger"
	"timebank/internal/metrics"
	"timebank/internal/wallet"

	"github.com/shopspring/decimal"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	// CreateAccount registers a user with the given role and seeds their wallet.
	CreateAccount(ctx context.Context, req RegisterRequest, role string) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	GetMe(ctx context.Context, caller auth.Identity) (*Profile, error)
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type Config struct {
	AccessSecret   string
	RefreshSecret  string
	InitialBalance decimal.Decimal
}

type service struct {
	repo    Repository
	wallets wallet.Repository
	tx      db.Transactor
	cfg     Config
}

func NewService(repo Repository, wallets wallet.Repository, tx db.Transactor, cfg Config) Service {
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	return &service{
		repo:    repo,
		wallets: wallets,
		tx:      tx,
		cfg:     cfg,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return s.CreateAccount(ctx, req, auth.RoleStudent)
}

func (s *service) CreateAccount(ctx context.Context, req RegisterRequest, role string) (*AuthResponse, error) {
	if !auth.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Faculty:      req.Faculty,
		StudentID:    req.StudentID,
		Role:         role,
		Active:       true,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
		_, err := s.wallets.Create(ctx, u.ID, s.cfg.InitialBalance)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRegistration(role)
	logger.Info("account created", "user_id", u.ID, "role", role)

	return s.issueTokens(u)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(u)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := auth.ParseToken(refreshToken, auth.TokenRefresh, s.cfg.RefreshSecret)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, ErrAccountDisabled
	}

	// Re-issued from the stored row so a role change takes effect on refresh.
	accessToken, err := auth.IssueToken(u.Identity(), auth.TokenAccess, s.cfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{AccessToken: accessToken, TokenType: "Bearer", User: *u}, nil
}

func (s *service) GetMe(ctx context.Context, caller auth.Identity) (*Profile, error) {
	return s.GetProfile(ctx, caller.UserID)
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	w, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: *u, Wallet: w}, nil
}

func (s *service) GetByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *service) issueTokens(u *User) (*AuthResponse, error) {
	pair, err := auth.IssuePair(u.Identity(), s.cfg.AccessSecret, s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "Bearer",
		User:         *u,
	}, nil
}
