// Package storage provides blob storage for claim attachments.
package storage

import (
	"context"
	"io"
)

// Store persists claim attachments addressed by path. Paths are opaque to
// callers beyond what they built themselves; the store never lists objects.
type Store interface {
	// Put stores the content under the given path, overwriting any previous
	// object.
	Put(ctx context.Context, path string, content io.Reader) error

	// Delete removes the object at path. Deleting a missing object is a
	// no-op; existence is checked first.
	Delete(ctx context.Context, path string) error

	// Exists reports whether an object is stored under path.
	Exists(ctx context.Context, path string) (bool, error)
}
