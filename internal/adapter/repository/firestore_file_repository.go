package repository

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"filehub/internal/domain/entity"
	"filehub/internal/domain/repository"
	"filehub/pkg/errors"
	"filehub/pkg/logger"
)

const (
	fileRecordsCollection = "file_records"
	countersCollection    = "counters"
	deleteBatchSize       = 400
)

type firestoreFileRepository struct {
	client *firestore.Client
}

func NewFirestoreFileRepository(client *firestore.Client) repository.FileMetadataRepository {
	return &firestoreFileRepository{
		client: client,
	}
}

func (r *firestoreFileRepository) doc(id int64) *firestore.DocumentRef {
	return r.client.Collection(fileRecordsCollection).Doc(strconv.FormatInt(id, 10))
}

func (r *firestoreFileRepository) counter() *firestore.DocumentRef {
	return r.client.Collection(countersCollection).Doc(fileRecordsCollection)
}

func (r *firestoreFileRepository) NextID(ctx context.Context) (int64, error) {
	var next int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(r.counter())
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		next = 1
		if snap != nil && snap.Exists() {
			if last, err := snap.DataAt("lastId"); err == nil {
				if n, ok := last.(int64); ok {
					next = n + 1
				}
			}
		}

		return tx.Set(r.counter(), map[string]interface{}{"lastId": next})
	})
	if err != nil {
		return 0, errors.BackendUnavailable("Failed to reserve file id", err)
	}
	return next, nil
}

func (r *firestoreFileRepository) Create(ctx context.Context, record *entity.FileRecord) error {
	_, err := r.doc(record.ID).Create(ctx, record)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.DuplicateID(record.ID)
		}
		return errors.BackendUnavailable("Failed to create file record", err)
	}

	// Keep the counter ahead of ids chosen by callers.
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(r.counter())
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if snap != nil && snap.Exists() {
			if last, err := snap.DataAt("lastId"); err == nil {
				if n, ok := last.(int64); ok && n >= record.ID {
					return nil
				}
			}
		}
		return tx.Set(r.counter(), map[string]interface{}{"lastId": record.ID})
	})
	if err != nil {
		logger.Warn("Failed to advance file id counter past %d: %v", record.ID, err)
	}
	return nil
}

func (r *firestoreFileRepository) GetByID(ctx context.Context, id int64) (*entity.FileRecord, error) {
	doc, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("File", err)
		}
		return nil, errors.BackendUnavailable("Failed to get file record", err)
	}

	var record entity.FileRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, errors.Internal("Failed to parse file record", err)
	}

	return &record, nil
}

func (r *firestoreFileRepository) List(ctx context.Context) ([]*entity.FileRecord, error) {
	iter := r.client.Collection(fileRecordsCollection).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	records := []*entity.FileRecord{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.BackendUnavailable("Failed to iterate file records", err)
		}

		var record entity.FileRecord
		if err := doc.DataTo(&record); err != nil {
			logger.Error("Failed to parse file record %s: %v", doc.Ref.ID, err)
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}

func (r *firestoreFileRepository) Update(ctx context.Context, id int64, patch entity.RecordPatch) (*entity.FileRecord, error) {
	var updated entity.FileRecord
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(r.doc(id))
		if err != nil {
			return err
		}
		if err := doc.DataTo(&updated); err != nil {
			return err
		}
		patch.Apply(&updated)
		return tx.Set(r.doc(id), &updated)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("File", err)
		}
		return nil, errors.BackendUnavailable("Failed to update file record", err)
	}
	return &updated, nil
}

func (r *firestoreFileRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.doc(id).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errors.BackendUnavailable("Failed to delete file record", err)
	}
	return nil
}

func (r *firestoreFileRepository) DeleteAll(ctx context.Context) error {
	refs, err := r.client.Collection(fileRecordsCollection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return errors.BackendUnavailable("Failed to list file records", err)
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]bulkJob, 0, len(refs))
	for i, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return errors.BackendUnavailable("Failed to delete file records", err)
		}
		jobs = append(jobs, job)
		if (i+1)%deleteBatchSize == 0 {
			bw.Flush()
		}
	}
	bw.End()

	return firstBulkError(jobs)
}

type bulkJob interface {
	Results() (*firestore.WriteResult, error)
}

// firstBulkError waits for every queued write and reports the first failure.
func firstBulkError(jobs []bulkJob) error {
	for _, job := range jobs {
		if _, err := job.Results(); err != nil && status.Code(err) != codes.NotFound {
			return errors.BackendUnavailable("Failed to delete file records", err)
		}
	}
	return nil
}

func (r *firestoreFileRepository) Close() error {
	return r.client.Close()
}
