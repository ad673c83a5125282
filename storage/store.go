package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

type PutResult struct {
	Key      string
	Location string
	ETag     string
}

// ObjectStore keeps published documents such as archived standings.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, reader io.Reader) (*PutResult, error)

	// Get returns ErrObjectNotFound when key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
