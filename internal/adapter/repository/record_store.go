package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"time"

	"filehub/internal/domain/entity"
	"filehub/internal/domain/repository"
	"filehub/internal/domain/service"
	"filehub/pkg/errors"
	"filehub/pkg/logger"
)

const DefaultBlobTimeout = 30 * time.Second

// RecordStore joins a metadata repository with the blob store holding the
// bytes. All mutations go through one lock.
type RecordStore struct {
	mu          sync.Mutex
	meta        repository.FileMetadataRepository
	blobs       service.BlobStore
	blobTimeout time.Duration
}

var _ repository.FileRecordStore = (*RecordStore)(nil)

func NewRecordStore(meta repository.FileMetadataRepository, blobs service.BlobStore, blobTimeout time.Duration) *RecordStore {
	if blobTimeout <= 0 {
		blobTimeout = DefaultBlobTimeout
	}
	return &RecordStore{
		meta:        meta,
		blobs:       blobs,
		blobTimeout: blobTimeout,
	}
}

func (s *RecordStore) List(ctx context.Context) ([]*entity.FileRecord, error) {
	return s.meta.List(ctx)
}

func (s *RecordStore) Get(ctx context.Context, id int64) (*entity.FileRecord, error) {
	return s.meta.GetByID(ctx, id)
}

// Insert stores record. A zero ID is replaced by a freshly reserved one.
func (s *RecordStore) Insert(ctx context.Context, record *entity.FileRecord) (*entity.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := record.Clone()
	if stored.ID == 0 {
		id, err := s.meta.NextID(ctx)
		if err != nil {
			return nil, err
		}
		stored.ID = id
	}

	if err := s.meta.Create(ctx, stored); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

func (s *RecordStore) Update(ctx context.Context, id int64, patch entity.RecordPatch) (*entity.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Update(ctx, id, patch)
}

// Remove releases the bytes of id, then its metadata. A missing id is a no-op.
func (s *RecordStore) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, id)
}

func (s *RecordStore) removeLocked(ctx context.Context, id int64) error {
	record, err := s.meta.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil
		}
		return err
	}

	if err := s.deleteBlob(ctx, record.StorageKey); err != nil {
		return err
	}
	return s.meta.Delete(ctx, id)
}

// Clear removes every record. If some bytes cannot be released, the records
// already released are still dropped and the error is returned.
func (s *RecordStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.meta.List(ctx)
	if err != nil {
		return err
	}

	for i, record := range records {
		if err := s.deleteBlob(ctx, record.StorageKey); err != nil {
			for _, released := range records[:i] {
				if derr := s.meta.Delete(ctx, released.ID); derr != nil {
					logger.Error("Failed to drop record %d after clear failure: %v", released.ID, derr)
				}
			}
			return err
		}
	}

	return s.meta.DeleteAll(ctx)
}

// Open returns a reader over the bytes of id. The caller closes it.
func (s *RecordStore) Open(ctx context.Context, id int64) (*entity.FileRecord, io.ReadCloser, error) {
	record, err := s.meta.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.blobs.Open(ctx, record.StorageKey)
	if err != nil {
		if stderrors.Is(err, service.ErrBlobNotFound) {
			return nil, nil, errors.NotFound("File content", err)
		}
		return nil, nil, errors.BackendUnavailable("Failed to open file content", err)
	}
	return record, reader, nil
}

// PutBlob writes bytes under key, bounded by the blob timeout.
func (s *RecordStore) PutBlob(ctx context.Context, key string, data io.Reader, contentType string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.blobTimeout)
	defer cancel()

	size, err := s.blobs.Put(ctx, key, data, contentType)
	if err != nil {
		return 0, errors.BackendUnavailable(fmt.Sprintf("Failed to store %s", key), err)
	}
	return size, nil
}

// DeleteBlob releases bytes that have no record, e.g. after a failed insert.
func (s *RecordStore) DeleteBlob(ctx context.Context, key string) error {
	return s.deleteBlob(ctx, key)
}

func (s *RecordStore) ListBlobs(ctx context.Context) ([]service.BlobInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.blobTimeout)
	defer cancel()

	infos, err := s.blobs.List(ctx)
	if err != nil {
		return nil, errors.BackendUnavailable("Failed to list stored files", err)
	}
	return infos, nil
}

// BlobExists reports whether bytes are stored under key.
func (s *RecordStore) BlobExists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.blobTimeout)
	defer cancel()

	reader, err := s.blobs.Open(ctx, key)
	if err != nil {
		if stderrors.Is(err, service.ErrBlobNotFound) {
			return false, nil
		}
		return false, errors.BackendUnavailable(fmt.Sprintf("Failed to check %s", key), err)
	}
	reader.Close()
	return true, nil
}

func (s *RecordStore) deleteBlob(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.blobTimeout)
	defer cancel()

	if err := s.blobs.Delete(ctx, key); err != nil {
		return errors.BackendUnavailable(fmt.Sprintf("Failed to delete %s", key), err)
	}
	return nil
}

func (s *RecordStore) Close() error {
	var firstErr error
	if err := s.blobs.Close(); err != nil {
		firstErr = err
	}
	if err := s.meta.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
