package service

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound is returned by Open when no bytes exist under the key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobInfo describes stored bytes found by List.
type BlobInfo struct {
	Key        string
	Size       int64
	ModifiedAt time.Time
}

// BlobStore keeps the raw bytes of uploaded files.
type BlobStore interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent: a missing key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]BlobInfo, error)
	Close() error
}
