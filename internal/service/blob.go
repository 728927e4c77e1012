package service

import (
	"context"
	"io"
)

// BlobStore stores attachment file bytes under an opaque location
// key.  The engine only ever round-trips the key it got back from
// Save; it never interprets it.
type BlobStore interface {
	// Save writes the stream to a fresh location and returns its
	// key.  The ext hint (including the dot, may be empty) lets
	// implementations keep a recognizable file extension.
	Save(ctx context.Context, r io.Reader, ext string) (string, error)
	// Open returns a reader over the stored bytes.
	Open(location string) (io.ReadCloser, error)
	// Remove deletes the stored bytes.  Callers treat failures as
	// non-fatal for delete paths.
	Remove(location string) error
}
