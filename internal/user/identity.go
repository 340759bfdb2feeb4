package user

import (
	"context"
	"errors"

	"timebank/internal/auth"
)

// IdentityResolver backs the auth middlewares with the stored account, so that
// deactivation and role changes apply to tokens that were already issued.
type IdentityResolver struct {
	repo Repository
}

func NewIdentityResolver(repo Repository) *IdentityResolver {
	return &IdentityResolver{repo: repo}
}

func (r *IdentityResolver) ResolveIdentity(ctx context.Context, userID int64) (auth.Identity, error) {
	u, err := r.repo.FindByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return auth.Identity{}, auth.ErrUnknownAccount
	}
	if err != nil {
		return auth.Identity{}, err
	}
	if !u.Active {
		return auth.Identity{}, auth.ErrAccountInactive
	}
	return u.Identity(), nil
}
