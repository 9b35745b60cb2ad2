package repository

import (
	"context"

	"filehub/internal/domain/entity"
)

// FileMetadataRepository persists FileRecord metadata on one backend medium.
// It knows nothing about the stored bytes.
type FileMetadataRepository interface {
	// NextID reserves a fresh id. Ids are never handed out twice by one repository instance.
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, record *entity.FileRecord) error
	GetByID(ctx context.Context, id int64) (*entity.FileRecord, error)
	List(ctx context.Context) ([]*entity.FileRecord, error)
	Update(ctx context.Context, id int64, patch entity.RecordPatch) (*entity.FileRecord, error)
	// Delete is idempotent: a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Close() error
}

// FileRecordStore owns the authoritative collection of FileRecords together
// with their bytes. Removing a record always releases its bytes.
type FileRecordStore interface {
	List(ctx context.Context) ([]*entity.FileRecord, error)
	Get(ctx context.Context, id int64) (*entity.FileRecord, error)
	Insert(ctx context.Context, record *entity.FileRecord) (*entity.FileRecord, error)
	Update(ctx context.Context, id int64, patch entity.RecordPatch) (*entity.FileRecord, error)
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}
