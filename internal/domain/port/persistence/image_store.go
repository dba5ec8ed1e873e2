package persistence

import (
	"context"
	"io"
)

// ImageStore keeps uploaded item images outside the record store
type ImageStore interface {
	// Save stores content under a fresh name derived from originalName
	//
	// Possible errors:
	// - ErrInvalidFileType: If the extension is not allowed
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)

	// Remove deletes a stored image. Removing the default image is a no-op.
	Remove(ctx context.Context, name string) error

	// Path resolves a stored name to a readable file path
	//
	// Possible errors:
	// - ErrNotFound: If the image doesn't exist
	Path(name string) (string, error)
}
