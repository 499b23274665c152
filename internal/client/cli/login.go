package cli

import (
	"context"
	"fmt"
)

// wipe zeroes sensitive bytes after use.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Login prompts for credentials and authenticates against the server.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	identity, err := a.api.Login(ctx, email, string(password))
	wipe(password)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	a.identity = identity
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", identity.Email, identity.Role)
	return nil
}

// Logout closes any open document and drops the server session.
func (a *App) Logout(ctx context.Context) error {
	if a.hasOpenDocument() {
		if err := a.CloseDocument(ctx); err != nil {
			return err
		}
	}

	if err := a.api.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout: %v\n", err)
	}
	a.identity = nil
	a.tenants = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
