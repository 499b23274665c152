// Package archive stores snapshots of completed session documents in
// S3-compatible object storage. Archiving is best-effort: a failure is
// logged by the caller and never blocks completing a session.
package archive

import "context"

// Archiver writes an immutable snapshot under the given key.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte) error
}

// Nop is used when no object storage is configured.
type Nop struct{}

func (Nop) Archive(ctx context.Context, key string, body []byte) error { return nil }
