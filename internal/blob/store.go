// Package blob provides the versioned object store the pipeline persists
// its state into: write-once objects for run records and snapshots, and a
// single mutable pointer object for "latest".
package blob

import (
	"context"
	"errors"
)

var (
	// ErrObjectExists is returned by WriteImmutable when the key is taken.
	// Write-once paths must never be silently overwritten.
	ErrObjectExists = errors.New("object already exists")
	// ErrNotFound is returned by Read when no object exists at the key.
	ErrNotFound = errors.New("object not found")
)

// Store is a minimal versioned blob store. Keys are slash-separated paths.
// Write methods return a stable reference that Read also accepts, so a URL
// recorded in a manifest can be dereferenced later.
type Store interface {
	// WriteImmutable writes a new object and fails with ErrObjectExists if
	// the key is already present.
	WriteImmutable(ctx context.Context, key string, data []byte) (string, error)
	// WritePointer writes or overwrites a mutable pointer object.
	WritePointer(ctx context.Context, key string, data []byte) (string, error)
	// Read returns the contents of an object by key or by a reference
	// previously returned from a write.
	Read(ctx context.Context, ref string) ([]byte, error)
	// Exists reports whether an object is present at the key.
	Exists(ctx context.Context, key string) (bool, error)
}
