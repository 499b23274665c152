package cli

import (
	"bufio"
	"context"
	"os"
)

// Root runs the interactive loop until the user exits or stdin closes.
// An open document is closed on the way out so its last state is flushed
// to the local store.
func (a *App) Root(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)

	if a.hasOpenDocument() {
		_ = a.engine.Close(ctx)
	}
}
