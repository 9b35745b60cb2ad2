package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"filehub/internal/domain/entity"
	"filehub/internal/ingest"
	"filehub/pkg/errors"
	"filehub/pkg/logger"
)

type FileUseCase struct {
	store        FileStore
	defaultLimit int

	// uploads and deletes hold the read side while they touch bytes and
	// records; Reconcile takes the write side so its snapshot stays true.
	mutationGate sync.RWMutex
	favoriteMu sync.Mutex

	now func() time.Time
}

func NewFileUseCase(store FileStore, defaultLimit int) *FileUseCase {
	if defaultLimit < 1 {
		defaultLimit = DefaultPageSize
	}
	return &FileUseCase{
		store:        store,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Adopted []*entity.FileRecord `json:"adopted"`
	Dropped []int64              `json:"dropped"`
}

// Upload stores every file part of a multipart body. Files whose bytes or
// record cannot be written are skipped; the records actually created are
// returned in body order.
func (uc *FileUseCase) Upload(ctx context.Context, body io.Reader, contentType string) ([]*entity.FileRecord, error) {
	files, err := ingest.ExtractFiles(body, contentType)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.BadRequest("No files uploaded", nil)
	}

	uc.mutationGate.RLock()
	defer uc.mutationGate.RUnlock()

	created := make([]*entity.FileRecord, 0, len(files))
	for _, file := range files {
		record, err := uc.storeFile(ctx, file)
		if err != nil {
			logger.Error("Failed to store %q: %v", file.Filename, err)
			continue
		}
		created = append(created, record)
	}

	logger.Info("Stored %d of %d uploaded files", len(created), len(files))
	return created, nil
}

func (uc *FileUseCase) storeFile(ctx context.Context, file *ingest.UploadedFile) (*entity.FileRecord, error) {
	filename := ingest.RepairFilename(file.Filename)
	mediaType := detectMimetype(file)
	uploadedAt := uc.now().UTC().Truncate(time.Millisecond)
	key := NewStorageKey(uploadedAt, filename)

	size, err := uc.store.PutBlob(ctx, key, bytes.NewReader(file.Payload), mediaType)
	if err != nil {
		uploadFailuresTotal.WithLabelValues("store").Inc()
		return nil, err
	}

	record, err := uc.store.Insert(ctx, &entity.FileRecord{
		Filename:   filename,
		StorageKey: key,
		Size:       size,
		Mimetype:   mediaType,
		UploadDate: uploadedAt,
	})
	if err != nil {
		uploadFailuresTotal.WithLabelValues("insert").Inc()
		if derr := uc.store.DeleteBlob(ctx, key); derr != nil {
			logger.Warn("Failed to release bytes of %s: %v", key, derr)
		}
		return nil, err
	}

	filesUploadedTotal.Inc()
	uploadedBytesTotal.Add(float64(size))
	return record, nil
}

func detectMimetype(file *ingest.UploadedFile) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	if detected := mimetype.Detect(file.Payload); detected != nil {
		return detected.String()
	}
	return entity.DefaultMimetype
}

func (uc *FileUseCase) List(ctx context.Context, opts QueryOptions) (*QueryResult, error) {
	records, err := uc.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Limit < 1 {
		opts.Limit = uc.defaultLimit
	}
	return QueryFiles(records, opts), nil
}

func (uc *FileUseCase) GetOne(ctx context.Context, id int64) (*entity.FileRecord, error) {
	return uc.store.Get(ctx, id)
}

// OpenContent returns the record and a reader over its bytes. The caller closes the reader.
func (uc *FileUseCase) OpenContent(ctx context.Context, id int64) (*entity.FileRecord, io.ReadCloser, error) {
	return uc.store.Open(ctx, id)
}

// ToggleFavorite flips the favorite flag of id and returns the new value.
func (uc *FileUseCase) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	uc.favoriteMu.Lock()
	defer uc.favoriteMu.Unlock()

	record, err := uc.store.Get(ctx, id)
	if err != nil {
		return false, err
	}

	favorite := !record.Favorite
	updated, err := uc.store.Update(ctx, id, entity.RecordPatch{Favorite: &favorite})
	if err != nil {
		return false, err
	}
	return updated.Favorite, nil
}

func (uc *FileUseCase) DeleteOne(ctx context.Context, id int64) error {
	uc.mutationGate.RLock()
	defer uc.mutationGate.RUnlock()

	if _, err := uc.store.Get(ctx, id); err != nil {
		return err
	}
	if err := uc.store.Remove(ctx, id); err != nil {
		return err
	}

	filesDeletedTotal.WithLabelValues("single").Inc()
	return nil
}

// DeleteMany removes the given ids and returns how many existed. Unknown ids are skipped.
func (uc *FileUseCase) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, errors.EmptySelection("No file ids provided")
	}

	uc.mutationGate.RLock()
	defer uc.mutationGate.RUnlock()

	deleted := 0
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, err := uc.store.Get(ctx, id); err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				continue
			}
			return deleted, err
		}
		if err := uc.store.Remove(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}

	filesDeletedTotal.WithLabelValues("batch").Add(float64(deleted))
	return deleted, nil
}

func (uc *FileUseCase) DeleteAll(ctx context.Context) error {
	uc.mutationGate.RLock()
	defer uc.mutationGate.RUnlock()

	records, err := uc.store.List(ctx)
	if err != nil {
		return err
	}
	if err := uc.store.Clear(ctx); err != nil {
		return err
	}

	filesDeletedTotal.WithLabelValues("all").Add(float64(len(records)))
	logger.Info("Deleted all %d files", len(records))
	return nil
}

// DeleteByExtension removes every file whose name ends in "."+ext, ignoring case.
func (uc *FileUseCase) DeleteByExtension(ctx context.Context, ext string) (int, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return 0, errors.BadRequest("Extension is required", nil)
	}
	suffix := "." + ext

	uc.mutationGate.RLock()
	defer uc.mutationGate.RUnlock()

	records, err := uc.store.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, record := range records {
		if !strings.HasSuffix(strings.ToLower(record.Filename), suffix) {
			continue
		}
		if err := uc.store.Remove(ctx, record.ID); err != nil {
			return deleted, err
		}
		deleted++
	}

	if deleted == 0 {
		return 0, errors.NotFound(fmt.Sprintf("Files with extension %s", suffix), nil)
	}

	filesDeletedTotal.WithLabelValues("extension").Add(float64(deleted))
	return deleted, nil
}

// Reconcile makes records and stored bytes agree. Bytes with no record are
// adopted as new records; records whose bytes are gone are dropped.
func (uc *FileUseCase) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	uc.mutationGate.Lock()
	defer uc.mutationGate.Unlock()

	blobs, err := uc.store.ListBlobs(ctx)
	if err != nil {
		return nil, err
	}
	records, err := uc.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]bool, len(blobs))
	for _, blob := range blobs {
		stored[blob.Key] = true
	}
	known := make(map[string]bool, len(records))
	for _, record := range records {
		known[record.StorageKey] = true
	}

	report := &ReconcileReport{
		Adopted: []*entity.FileRecord{},
		Dropped: []int64{},
	}

	for _, record := range records {
		if stored[record.StorageKey] {
			continue
		}
		if err := uc.store.Remove(ctx, record.ID); err != nil {
			return report, err
		}
		report.Dropped = append(report.Dropped, record.ID)
		reconcileChangesTotal.WithLabelValues("dropped").Inc()
	}

	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Key < blobs[j].Key })
	for _, blob := range blobs {
		if known[blob.Key] {
			continue
		}
		exists, err := uc.store.BlobExists(ctx, blob.Key)
		if err != nil {
			return report, err
		}
		if !exists {
			continue
		}

		uploadDate := blob.ModifiedAt.UTC()
		if uploadDate.IsZero() {
			uploadDate = uc.now().UTC()
		}

		record, err := uc.store.Insert(ctx, &entity.FileRecord{
			Filename:   ingest.RepairFilename(FilenameFromKey(blob.Key)),
			StorageKey: blob.Key,
			Size:       blob.Size,
			Mimetype:   entity.DefaultMimetype,
			UploadDate: uploadDate.Truncate(time.Millisecond),
		})
		if err != nil {
			return report, err
		}
		report.Adopted = append(report.Adopted, record)
		reconcileChangesTotal.WithLabelValues("adopted").Inc()
	}

	if len(report.Adopted) > 0 || len(report.Dropped) > 0 {
		logger.Info("Reconcile adopted %d files and dropped %d records", len(report.Adopted), len(report.Dropped))
	}
	return report, nil
}

// CheckStorage verifies that both the records and the bytes are reachable.
func (uc *FileUseCase) CheckStorage(ctx context.Context) error {
	if _, err := uc.store.List(ctx); err != nil {
		return err
	}
	_, err := uc.store.ListBlobs(ctx)
	return err
}
