package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"filehub/internal/adapter/repository"
	domainrepo "filehub/internal/domain/repository"
	"filehub/internal/domain/service"
	"filehub/internal/infrastructure/storage"
	"filehub/pkg/config"
	"filehub/pkg/logger"
)

// gcsPrefix keeps uploaded objects apart from anything else in the bucket.
const gcsPrefix = "filehub"

func clientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
	}
	if cfg.ServiceAccountPath != "" {
		logger.Info("Using service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
	}
	// Application default credentials.
	return nil
}

func openMetadataRepository(ctx context.Context, cfg *config.Config) (domainrepo.FileMetadataRepository, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return repository.NewMemoryFileRepository(), nil
	case config.StoreJSON:
		return repository.NewJSONFileRepository(cfg.JSONDBPath)
	case config.StoreSQLite:
		return repository.NewSQLiteFileRepository(ctx, cfg.SQLitePath)
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, clientOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		return repository.NewFirestoreFileRepository(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config) (service.BlobStore, error) {
	switch cfg.BlobBackend {
	case config.BlobMemory:
		return storage.NewMemoryStore(), nil
	case config.BlobLocal:
		return storage.NewLocalStore(cfg.DataDir)
	case config.BlobGCS:
		return storage.NewCloudStorageClient(ctx, cfg.StorageBucket, gcsPrefix, cfg.ConfigureCORS, clientOptions(cfg)...)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// OpenRecordStore wires the configured metadata and blob backends together.
func OpenRecordStore(ctx context.Context, cfg *config.Config) (*repository.RecordStore, error) {
	meta, err := openMetadataRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		meta.Close()
		return nil, err
	}

	logger.Info("Using %s metadata store with %s blob storage", cfg.StoreBackend, cfg.BlobBackend)
	return repository.NewRecordStore(meta, blobs, cfg.BlobTimeout), nil
}
