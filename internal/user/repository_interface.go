package user

import (
	"context"

	"timebank/internal/api"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page api.PageRequest) ([]User, int64, error)
	SetActive(ctx context.Context, id int64, active bool) (*User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	// LockAdminIDs row-locks every admin until the surrounding transaction ends.
	LockAdminIDs(ctx context.Context) ([]int64, error)
}
