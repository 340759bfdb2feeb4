package auth

import (
	"context"
	"errors"
)

const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrEmptyJWTSecret   = errors.New("jwt secret cannot be empty")
	ErrUnknownAccount   = errors.New("account does not exist")
	ErrAccountInactive  = errors.New("account is deactivated")
)

// Identity is the authenticated caller. Services receive it explicitly.
type Identity struct {
	UserID int64
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleAdmin
}

// AccountResolver returns the stored identity behind a token subject. It reports
// ErrUnknownAccount or ErrAccountInactive when the account may no longer act.
type AccountResolver interface {
	ResolveIdentity(ctx context.Context, userID int64) (Identity, error)
}
