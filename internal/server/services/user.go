// Package services contains server-side business logic. Every operation
// receives the verified caller and passes through the tenant access filter
// before any data is read or written.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/logging"
	"github.com/figmints/meetsync/internal/server/auth"
	"github.com/figmints/meetsync/internal/server/models"
	"github.com/figmints/meetsync/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// dummyHash is compared against when the email is unknown, so login timing
// does not leak account existence.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("meetsync-dummy"), bcryptCost)

// UserService handles login, token verification, and user administration.
type UserService struct {
	users  users.Repository
	tokens *auth.TokenService
	logger logging.Logger
}

func NewUserService(users users.Repository, tokens *auth.TokenService, logger logging.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, logger: logger}
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are deliberately indistinguishable: both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, fmt.Errorf("login lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn(ctx, "last login update failed", "user_id", user.ID, "error", err)
	}

	return token, user, nil
}

// Authenticate verifies a presented token and loads its subject. Expired and
// forged tokens are logged with distinct reasons but both surface as
// common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			s.logger.Debug(ctx, "token rejected", "reason", "expired")
		} else {
			s.logger.Warn(ctx, "token rejected", "reason", "bad signature or malformed")
		}
		return nil, common.ErrorUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	if !user.Active {
		// Deactivated after the token was issued.
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// CreateUserInput are the admin-supplied fields for a new user.
type CreateUserInput struct {
	Email     string
	Password  string
	Role      models.Role
	TenantID  string
	FirstName string
	LastName  string
}

func (in *CreateUserInput) validate() error {
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrorValidation)
	}
	switch in.Role {
	case models.RoleAdmin:
		if in.TenantID != "" {
			return fmt.Errorf("%w: admins have no tenant binding", common.ErrorValidation)
		}
	case models.RoleClient:
		if in.TenantID == "" {
			return fmt.Errorf("%w: client users require a tenant", common.ErrorValidation)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", common.ErrorValidation, in.Role)
	}
	return nil
}

// Create adds a new user. Admin only.
func (s *UserService) Create(ctx context.Context, caller *models.User, in CreateUserInput) (*models.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(strings.ToLower(in.Email)),
		PasswordHash: string(hash),
		Role:         in.Role,
		TenantID:     in.TenantID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Active:       true,
	}

	return s.users.Create(ctx, user)
}

// List returns every user, including deactivated ones. Admin only.
func (s *UserService) List(ctx context.Context, caller *models.User) ([]*models.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// UpdateUserInput carries the mutable fields of a user. Nil pointers leave
// the stored value unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Password  *string
	Active    *bool
}

// Update edits a user's profile, resets the password, or deactivates the
// account. Users are never hard-deleted; deactivation keeps references valid.
// Admin only.
func (s *UserService) Update(ctx context.Context, caller *models.User, id string, in UpdateUserInput) (*models.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", common.ErrorValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, common.ErrorInternal
		}
		user.PasswordHash = string(hash)
	}
	if in.Active != nil {
		user.Active = *in.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
