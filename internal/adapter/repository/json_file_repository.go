package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"filehub/internal/domain/entity"
	"filehub/internal/domain/repository"
	"filehub/pkg/errors"
)

// jsonFileRepository keeps every record in one JSON array that is rewritten
// in full on each mutation. Reads and read-modify-write cycles share one
// mutex; writes go through a temp file and rename, so the file on disk is
// always either the old or the new collection.
type jsonFileRepository struct {
	mu     sync.Mutex
	path   string
	lastID int64
}

func NewJSONFileRepository(path string) (repository.FileMetadataRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	r := &jsonFileRepository{path: path}

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.ID > r.lastID {
			r.lastID = record.ID
		}
	}

	return r, nil
}

func (r *jsonFileRepository) load() ([]*entity.FileRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*entity.FileRecord{}, nil
		}
		return nil, errors.BackendUnavailable("Failed to read file database", err)
	}

	if len(data) == 0 {
		return []*entity.FileRecord{}, nil
	}

	var records []*entity.FileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.BackendUnavailable("Failed to parse file database", err)
	}
	return records, nil
}

func (r *jsonFileRepository) save(records []*entity.FileRecord) error {
	if records == nil {
		records = []*entity.FileRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Internal("Failed to encode file database", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		os.Remove(tmpPath)
		return errors.BackendUnavailable("Failed to write file database", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return errors.BackendUnavailable("Failed to replace file database", err)
	}
	return nil
}

func indexOf(records []*entity.FileRecord, id int64) int {
	for i, record := range records {
		if record.ID == id {
			return i
		}
	}
	return -1
}

func (r *jsonFileRepository) NextID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	return r.lastID, nil
}

func (r *jsonFileRepository) Create(ctx context.Context, record *entity.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	if indexOf(records, record.ID) >= 0 {
		return errors.DuplicateID(record.ID)
	}

	if err := r.save(append(records, record.Clone())); err != nil {
		return err
	}
	if record.ID > r.lastID {
		r.lastID = record.ID
	}
	return nil
}

func (r *jsonFileRepository) GetByID(ctx context.Context, id int64) (*entity.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, errors.NotFound("File", nil)
	}
	return records[i], nil
}

func (r *jsonFileRepository) List(ctx context.Context) ([]*entity.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (r *jsonFileRepository) Update(ctx context.Context, id int64, patch entity.RecordPatch) (*entity.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, errors.NotFound("File", nil)
	}

	patch.Apply(records[i])
	if err := r.save(records); err != nil {
		return nil, err
	}
	return records[i].Clone(), nil
}

func (r *jsonFileRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil
	}
	return r.save(append(records[:i], records[i+1:]...))
}

func (r *jsonFileRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(nil)
}

func (r *jsonFileRepository) Close() error {
	return nil
}
