package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	hasOpenDocument() bool
	Login(ctx context.Context) error
	Tenants(ctx context.Context) error
	Sessions(ctx context.Context) error
	Open(ctx context.Context) error
	Resume(ctx context.Context) error
	Show(ctx context.Context) error
	Edit(ctx context.Context) error
	Save(ctx context.Context) error
	Complete(ctx context.Context) error
	CloseDocument(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the meetsync CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - tenants        — list visible client organizations
//	  - sessions       — list a tenant's meeting sessions
//	  - open           — open (or create) the meeting for a date
//	  - resume         — recover the autosaved document from a previous run
//	  - show           — print the open document
//	  - edit           — edit a section of the open document
//	  - save           — push the open document to the server
//	  - complete       — mark the open session completed
//	  - close          — close the open document
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ms> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if !a.isLoggedIn() {
				printlnFn("Available commands: login, exit")
			} else if a.hasOpenDocument() {
				printlnFn("Available commands: show, edit, save, complete, close, logout, exit")
			} else {
				printlnFn("Available commands: tenants, sessions, open, resume, logout, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "tenants":
			_ = a.Tenants(ctx)

		case "sessions":
			_ = a.Sessions(ctx)

		case "open":
			_ = a.Open(ctx)

		case "resume":
			_ = a.Resume(ctx)

		case "show":
			_ = a.Show(ctx)

		case "edit":
			_ = a.Edit(ctx)

		case "save":
			_ = a.Save(ctx)

		case "complete":
			_ = a.Complete(ctx)

		case "close":
			_ = a.CloseDocument(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
