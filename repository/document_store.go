package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Download when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the external object store every entity persists through.
// Keys are slash-separated paths. The store offers no transactions, no
// listing and no compare-and-swap; callers own any write serialization.
type DocumentStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Exists(ctx context.Context, path string) (bool, error)
}
