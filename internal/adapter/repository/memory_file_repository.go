package repository

import (
	"context"
	"sort"
	"sync"

	"filehub/internal/domain/entity"
	"filehub/internal/domain/repository"
	"filehub/pkg/errors"
)

type memoryFileRepository struct {
	mu      sync.RWMutex
	records map[int64]*entity.FileRecord
	lastID  int64
}

func NewMemoryFileRepository() repository.FileMetadataRepository {
	return &memoryFileRepository{
		records: make(map[int64]*entity.FileRecord),
	}
}

func (r *memoryFileRepository) NextID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	return r.lastID, nil
}

func (r *memoryFileRepository) Create(ctx context.Context, record *entity.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return errors.DuplicateID(record.ID)
	}
	r.records[record.ID] = record.Clone()
	if record.ID > r.lastID {
		r.lastID = record.ID
	}
	return nil
}

func (r *memoryFileRepository) GetByID(ctx context.Context, id int64) (*entity.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("File", nil)
	}
	return record.Clone(), nil
}

func (r *memoryFileRepository) List(ctx context.Context) ([]*entity.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*entity.FileRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (r *memoryFileRepository) Update(ctx context.Context, id int64, patch entity.RecordPatch) (*entity.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("File", nil)
	}
	updated := record.Clone()
	patch.Apply(updated)
	r.records[id] = updated
	return updated.Clone(), nil
}

func (r *memoryFileRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *memoryFileRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[int64]*entity.FileRecord)
	return nil
}

func (r *memoryFileRepository) Close() error {
	return nil
}
