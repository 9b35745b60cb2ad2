package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filehub/internal/domain/entity"
	"filehub/internal/domain/repository"
	"filehub/pkg/errors"
)

type sqliteFileRepository struct {
	db *gorm.DB

	idMu   sync.Mutex
	lastID int64
}

// NewSQLiteFileRepository opens (or creates) the database at path and migrates
// the file_records table.
func NewSQLiteFileRepository(ctx context.Context, path string) (repository.FileMetadataRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// SQLite only supports one writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&entity.FileRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate file_records: %w", err)
	}

	r := &sqliteFileRepository{db: db}

	row := db.WithContext(ctx).Model(&entity.FileRecord{}).Select("COALESCE(MAX(id), 0)").Row()
	if err := row.Scan(&r.lastID); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to read max id: %w", err)
	}

	return r, nil
}

func (r *sqliteFileRepository) NextID(ctx context.Context) (int64, error) {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	r.lastID++
	return r.lastID, nil
}

func (r *sqliteFileRepository) Create(ctx context.Context, record *entity.FileRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.FileRecord{}).Where("id = ?", record.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.DuplicateID(record.ID)
		}
		return tx.Create(record.Clone()).Error
	})
	if err != nil {
		if errors.Is(err, errors.CodeDuplicateID) {
			return err
		}
		return errors.BackendUnavailable("Failed to create file record", err)
	}

	r.idMu.Lock()
	if record.ID > r.lastID {
		r.lastID = record.ID
	}
	r.idMu.Unlock()
	return nil
}

func (r *sqliteFileRepository) GetByID(ctx context.Context, id int64) (*entity.FileRecord, error) {
	var record entity.FileRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("File", err)
		}
		return nil, errors.BackendUnavailable("Failed to get file record", err)
	}
	return &record, nil
}

func (r *sqliteFileRepository) List(ctx context.Context) ([]*entity.FileRecord, error) {
	var records []*entity.FileRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, errors.BackendUnavailable("Failed to list file records", err)
	}
	if records == nil {
		records = []*entity.FileRecord{}
	}
	return records, nil
}

func (r *sqliteFileRepository) Update(ctx context.Context, id int64, patch entity.RecordPatch) (*entity.FileRecord, error) {
	var updated entity.FileRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		patch.Apply(&updated)
		return tx.Save(&updated).Error
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("File", err)
		}
		return nil, errors.BackendUnavailable("Failed to update file record", err)
	}
	return &updated, nil
}

func (r *sqliteFileRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&entity.FileRecord{}, "id = ?", id).Error; err != nil {
		return errors.BackendUnavailable("Failed to delete file record", err)
	}
	return nil
}

func (r *sqliteFileRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&entity.FileRecord{}).Error; err != nil {
		return errors.BackendUnavailable("Failed to delete file records", err)
	}
	return nil
}

func (r *sqliteFileRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
