package usecase

import (
	"context"
	"io"

	"filehub/internal/domain/entity"
	"filehub/internal/domain/repository"
	"filehub/internal/domain/service"
)

// FileStore is the record store plus direct access to the bytes it manages.
type FileStore interface {
	repository.FileRecordStore

	Open(ctx context.Context, id int64) (*entity.FileRecord, io.ReadCloser, error)
	PutBlob(ctx context.Context, key string, data io.Reader, contentType string) (int64, error)
	DeleteBlob(ctx context.Context, key string) error
	ListBlobs(ctx context.Context) ([]service.BlobInfo, error)
	BlobExists(ctx context.Context, key string) (bool, error)
}
