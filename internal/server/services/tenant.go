package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/server/auth"
	"github.com/figmints/meetsync/internal/server/models"
	"github.com/figmints/meetsync/internal/server/repositories/tenants"
	"github.com/google/uuid"
)

// TenantService manages client organizations. Reads are narrowed to the
// caller's own tenant unless the caller is an admin; registration is admin
// only.
type TenantService struct {
	tenants tenants.Repository
}

func NewTenantService(tenants tenants.Repository) *TenantService {
	return &TenantService{tenants: tenants}
}

// Register creates a new tenant. Admin only regardless of tenant match:
// creating a top-level tenant-scoped resource is a superuser operation.
func (s *TenantService) Register(ctx context.Context, caller *models.User, t *models.Tenant) (*models.Tenant, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("%w: tenant name is required", common.ErrorValidation)
	}

	t.ID = uuid.NewString()
	return s.tenants.Create(ctx, t)
}

// Get returns one tenant. The access filter runs before the lookup.
func (s *TenantService) Get(ctx context.Context, caller *models.User, id string) (*models.Tenant, error) {
	if err := auth.AuthorizeTenant(caller, id); err != nil {
		return nil, err
	}
	return s.tenants.GetByID(ctx, id)
}

// List returns tenants visible to the caller. For a client user the query is
// narrowed server-side to their own tenant; the filter is mandatory, not
// advisory.
func (s *TenantService) List(ctx context.Context, caller *models.User) ([]*models.Tenant, error) {
	if caller == nil {
		return nil, common.ErrorUnauthorized
	}
	return s.tenants.List(ctx, auth.TenantScope(caller))
}

// Update edits a tenant's profile. A client user may edit their own tenant.
func (s *TenantService) Update(ctx context.Context, caller *models.User, t *models.Tenant) (*models.Tenant, error) {
	if err := auth.AuthorizeTenant(caller, t.ID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("%w: tenant name is required", common.ErrorValidation)
	}
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
