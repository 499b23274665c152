package cli

import (
	"context"
	"fmt"

	"github.com/figmints/meetsync/internal/common"
)

// Tenants lists the client organizations visible to the caller. For a
// client-role user the server narrows the listing to their own tenant.
func (a *App) Tenants(ctx context.Context) error {
	tenants, err := a.api.ListTenants(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Failed to list tenants: %v\n", err)
		return err
	}

	a.tenants = tenants
	for i, t := range tenants {
		fmt.Fprintf(a.out, "%d. %s", i+1, t.Name)
		if t.AccountManager != "" {
			fmt.Fprintf(a.out, " (AM: %s)", t.AccountManager)
		}
		fmt.Fprintln(a.out)
	}
	if len(tenants) == 0 {
		fmt.Fprintln(a.out, "No tenants visible")
	}
	return nil
}

// pickTenant resolves the tenant the next command should act on. A user
// bound to one tenant gets it implicitly; admins pick from the cached list.
func (a *App) pickTenant(ctx context.Context) (id, name string, err error) {
	if a.identity != nil && a.identity.TenantID != "" {
		return a.identity.TenantID, "", nil
	}

	if len(a.tenants) == 0 {
		if err := a.Tenants(ctx); err != nil {
			return "", "", err
		}
	}

	choice, err := GetSimpleText(a.reader, "Tenant number", a.out)
	if err != nil {
		return "", "", err
	}

	var n int
	if _, err := fmt.Sscanf(choice, "%d", &n); err != nil || n < 1 || n > len(a.tenants) {
		return "", "", fmt.Errorf("invalid tenant number: %q", choice)
	}
	return a.tenants[n-1].ID, a.tenants[n-1].Name, nil
}

// Sessions lists a tenant's meeting sessions. When the server cannot be
// reached the locally kept copies are listed instead, so a previously
// visited meeting can still be reopened offline.
func (a *App) Sessions(ctx context.Context) error {
	tenantID, _, err := a.pickTenant(ctx)
	if err != nil {
		return err
	}

	sessions, err := a.api.ListSessions(ctx, tenantID)
	if err != nil {
		if common.IsRetriable(err) {
			return a.localSessions(ctx, tenantID)
		}
		fmt.Fprintf(a.out, "Failed to list sessions: %v\n", err)
		return err
	}

	for _, s := range sessions {
		fmt.Fprintf(a.out, "%s  %s", s.SessionDate, s.Status)
		if s.ScoreAverage != nil {
			fmt.Fprintf(a.out, "  score %.0f%%", *s.ScoreAverage)
		}
		fmt.Fprintln(a.out)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(a.out, "No sessions yet")
	}
	return nil
}

// localSessions lists the tenant's sessions held in the local store.
func (a *App) localSessions(ctx context.Context, tenantID string) error {
	records, err := a.store.ListRecords(ctx, tenantID)
	if err != nil {
		fmt.Fprintf(a.out, "Failed to list sessions: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Server unreachable, showing locally kept sessions:")
	for _, r := range records {
		fmt.Fprintf(a.out, "%s  local copy", r.SessionDate)
		if !r.LastSavedAt.IsZero() {
			fmt.Fprintf(a.out, ", last saved %s", r.LastSavedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(a.out)
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No local sessions")
	}
	return nil
}
