package user

import (
	"time"

	"timebank/internal/apperr"
	"timebank/internal/auth"
	"timebank/internal/wallet"
)

var (
	ErrUserNotFound       = apperr.NotFound("user not found")
	ErrEmailExists        = apperr.InvalidArgument("email already registered")
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrInvalidRole        = apperr.InvalidArgument("role must be STUDENT or ADMIN")
	ErrAccountDisabled    = apperr.Forbidden("account is deactivated")
	ErrInvalidRefresh     = apperr.Unauthorized("invalid or expired refresh token")
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Faculty      string    `db:"faculty" json:"faculty"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Profile is a user together with their wallet.
type Profile struct {
	User
	Wallet *wallet.Wallet `json:"wallet"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=100" example:"ann@campus.edu"`
	Password  string `json:"password" binding:"required,min=6,max=72" example:"secret123"`
	FirstName string `json:"first_name" binding:"required,max=100" example:"Ann"`
	LastName  string `json:"last_name" binding:"required,max=100" example:"Lee"`
	Faculty   string `json:"faculty" binding:"max=100" example:"Engineering"`
	StudentID string `json:"student_id" binding:"max=50" example:"S-1024"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type" example:"Bearer"`
	User         User   `json:"user"`
}
