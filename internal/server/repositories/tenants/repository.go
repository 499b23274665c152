package tenants

import (
	"context"

	"github.com/figmints/meetsync/internal/server/models"
)

// Repository describes persistence for tenants (client organizations).
type Repository interface {
	Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)

	// GetByID returns a tenant, common.ErrorNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.Tenant, error)

	// List returns tenants ordered by name. A non-empty scopeTenantID
	// restricts the result to that tenant; it is derived server-side from
	// the caller's identity, never from request input.
	List(ctx context.Context, scopeTenantID string) ([]*models.Tenant, error)

	Update(ctx context.Context, tenant *models.Tenant) error
}
