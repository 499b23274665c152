package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	open     bool

	calls []string
}

func (f *fakeExec) isLoggedIn() bool      { return f.loggedIn }
func (f *fakeExec) hasOpenDocument() bool { return f.open }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Tenants(ctx context.Context) error {
	f.calls = append(f.calls, "tenants")
	return nil
}
func (f *fakeExec) Sessions(ctx context.Context) error {
	f.calls = append(f.calls, "sessions")
	return nil
}
func (f *fakeExec) Open(ctx context.Context) error {
	f.calls = append(f.calls, "open")
	f.open = true
	return nil
}
func (f *fakeExec) Resume(ctx context.Context) error {
	f.calls = append(f.calls, "resume")
	f.open = true
	return nil
}
func (f *fakeExec) Show(ctx context.Context) error { f.calls = append(f.calls, "show"); return nil }
func (f *fakeExec) Edit(ctx context.Context) error { f.calls = append(f.calls, "edit"); return nil }
func (f *fakeExec) Save(ctx context.Context) error { f.calls = append(f.calls, "save"); return nil }
func (f *fakeExec) Complete(ctx context.Context) error {
	f.calls = append(f.calls, "complete")
	f.open = false
	return nil
}
func (f *fakeExec) CloseDocument(ctx context.Context) error {
	f.calls = append(f.calls, "close")
	f.open = false
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_MeetingFlow(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"tenants",
		"open",
		"edit",
		"save",
		"close",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "tenants", "open", "edit", "save", "close", "logout"}
	if len(exec.calls) != len(wantOrder) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, wantOrder)
	}
	for i, c := range exec.calls {
		if c != wantOrder[i] {
			t.Fatalf("commands order mismatch: got %v, want %v", exec.calls, wantOrder)
		}
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader(""))

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
