package auth

import (
	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/server/models"
)

// AuthorizeTenant decides whether the verified user may touch resources of
// the given tenant. Admins may touch any tenant; client users only their own.
// Denials return common.ErrorForbidden and must never reveal whether the
// requested resource exists.
func AuthorizeTenant(u *models.User, tenantID string) error {
	if u == nil {
		return common.ErrorUnauthorized
	}
	if u.IsAdmin() {
		return nil
	}
	if u.TenantID != "" && u.TenantID == tenantID {
		return nil
	}
	return common.ErrorForbidden
}

// TenantScope returns the tenant filter to apply to list-type reads where no
// tenant id is supplied. An empty string means unrestricted (admin). The
// filter is mandatory: repositories receive it before any data is read, so a
// client user can never widen a query by omitting the parameter.
func TenantScope(u *models.User) string {
	if u == nil || u.IsAdmin() {
		return ""
	}
	return u.TenantID
}

// RequireAdmin gates operations that create or mutate top-level tenant-scoped
// resources (tenant registration, user administration).
func RequireAdmin(u *models.User) error {
	if u == nil {
		return common.ErrorUnauthorized
	}
	if !u.IsAdmin() {
		return common.ErrorForbidden
	}
	return nil
}
