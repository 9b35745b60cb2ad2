package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"filehub/internal/domain/service"
)

type memoryBlob struct {
	data       []byte
	modifiedAt time.Time
}

// MemoryStore keeps blobs in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data io.Reader, contentType string) (int64, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = memoryBlob{data: buf, modifiedAt: time.Now()}
	return int64(len(buf)), nil
}

func (s *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, service.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(blob.data)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]service.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]service.BlobInfo, 0, len(s.blobs))
	for key, blob := range s.blobs {
		infos = append(infos, service.BlobInfo{
			Key:        key,
			Size:       int64(len(blob.data)),
			ModifiedAt: blob.modifiedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
