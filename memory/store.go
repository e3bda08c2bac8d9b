// Package memory persists rendered session transcripts. Keys are /-separated
// paths such as "transcripts/<account>/<contact>.txt"; values are raw bytes.
// Two backends exist: a directory tree and a single SQLite file.
package memory

import (
	"context"
	"io"
)

// Store is a flat key-value archive. Implementations perform I/O on every
// call and hold no cache.
type Store interface {
	// List returns the stored keys beginning with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Load retrieves entries for the specified keys.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save persists entries, creating or overwriting as needed.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	io.Closer
}
