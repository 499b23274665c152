package users

import (
	"context"

	"github.com/figmints/meetsync/internal/server/models"
)

// Repository describes persistence for user identities.
type Repository interface {
	// Create inserts a new user. A duplicate email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns an active user by email, common.ErrorNotFound if
	// absent or deactivated.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns a user by id regardless of active state,
	// common.ErrorNotFound if absent. Callers enforce the active check.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// List returns all users, including deactivated ones.
	List(ctx context.Context) ([]*models.User, error)

	// Update replaces the mutable profile fields of a user. Users are never
	// hard-deleted; deactivation sets Active=false.
	Update(ctx context.Context, user *models.User) error

	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, id string) error
}
