package models

import "time"

// Role determines what a user may see. Admins operate across all tenants;
// client users are bound to exactly one.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	TenantID     string // empty for admins
	FirstName    string
	LastName     string
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user is a superuser.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Identity is the caller-visible summary of a user. It never carries the
// password hash.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	TenantID  string `json:"tenant_id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Identity returns the summary form of the user.
func (u *User) Identity() Identity {
	return Identity{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		TenantID:  u.TenantID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
