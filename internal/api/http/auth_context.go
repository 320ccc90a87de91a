package httpapi

import (
	"context"

	"github.com/google/uuid"

	"github.com/quotehub/quotehub/internal/domain/user"
)

type authContextKey string

const authUserKey authContextKey = "authUser"

// AuthUser represents the authenticated account in context.
type AuthUser struct {
	UserID    uuid.UUID
	Username  string
	Role      user.Role
	SessionID uuid.UUID
}

func (u AuthUser) ActorString() string {
	switch u.Role {
	case user.RoleCustomer:
		return "customer:" + u.UserID.String()
	case user.RoleMerchant:
		return "merchant:" + u.UserID.String()
	default:
		return "admin:" + u.UserID.String()
	}
}

func withAuthUser(ctx context.Context, u *AuthUser) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, authUserKey, u)
}

func authUserFromContext(ctx context.Context) *AuthUser {
	val := ctx.Value(authUserKey)
	if v, ok := val.(*AuthUser); ok {
		return v
	}
	return nil
}
