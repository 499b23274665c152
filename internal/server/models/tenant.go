package models

import "time"

// Tenant is a client organization: the unit of data isolation. Every meeting
// session and every non-admin user belongs to exactly one tenant.
type Tenant struct {
	ID             string
	Name           string
	URL            string
	AccountManager string
	Strategist     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
