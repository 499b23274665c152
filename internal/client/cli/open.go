package cli

import (
	"context"
	"fmt"
)

// Open resolves the meeting session for a tenant and date and loads its
// document. Opening the same date twice lands on the same session. When the
// server cannot be reached the document comes from the local fallback chain.
func (a *App) Open(ctx context.Context) error {
	tenantID, tenantName, err := a.pickTenant(ctx)
	if err != nil {
		return err
	}

	date, err := GetSimpleText(a.reader, "Meeting date (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}

	if err := a.engine.Open(ctx, tenantID, tenantName, date); err != nil {
		fmt.Fprintf(a.out, "Failed to open: %v\n", err)
		return err
	}

	a.engine.StartAutosave()
	fmt.Fprintf(a.out, "Opened meeting for %s\n", date)
	return nil
}

// Resume recovers the autosaved document left behind by a previous run.
func (a *App) Resume(ctx context.Context) error {
	if err := a.engine.Resume(ctx); err != nil {
		fmt.Fprintf(a.out, "Nothing to resume: %v\n", err)
		return err
	}

	a.engine.StartAutosave()
	fmt.Fprintf(a.out, "Resumed meeting for %s (unsaved changes pending)\n", a.engine.SessionDate())
	return nil
}

// CloseDocument closes the open document. Unsaved changes stay in the local
// store for a later resume.
func (a *App) CloseDocument(ctx context.Context) error {
	dirty := a.engine.Dirty()
	if err := a.engine.Close(ctx); err != nil {
		fmt.Fprintf(a.out, "Close: %v\n", err)
		return err
	}

	if dirty {
		fmt.Fprintln(a.out, "Closed with unsaved changes kept locally; use resume to pick them up")
	} else {
		fmt.Fprintln(a.out, "Closed")
	}
	return nil
}
