package admin

import "timebank/internal/apperr"

var (
	ErrAdminRequired         = apperr.Forbidden("admin privileges required")
	ErrBootstrapClosed       = apperr.Forbidden("an admin already exists; sign in as an admin to create another")
	ErrCannotDeactivateAdmin = apperr.InvalidArgument("admin accounts cannot be deactivated")
	ErrSelfDemotion          = apperr.InvalidArgument("admins cannot remove their own admin role")
	ErrLastAdmin             = apperr.IllegalState("cannot demote the last remaining admin")
	ErrInvalidDate           = apperr.InvalidArgument("dates must be RFC 3339 timestamps or YYYY-MM-DD")
)

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required" example:"ADMIN"`
}
