package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"filehub/internal/domain/service"
	"filehub/pkg/logger"
)

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewCloudStorageClient connects to bucketName. Objects are stored under
// prefix, so one bucket can be shared with other data.
func NewCloudStorageClient(ctx context.Context, bucketName, prefix string, configureCORS bool, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}

	if configureCORS {
		if err := storageClient.setBucketCORS(ctx); err != nil {
			logger.Warn("Failed to set CORS configuration: %v", err)
		}
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	corsConfig := storage.CORS{
		MaxAge:          3600,
		Methods:         []string{"GET", "OPTIONS"},
		Origins:         []string{"*"},
		ResponseHeaders: []string{"Content-Type", "Content-Disposition"},
	}

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %w", err)
	}

	if len(bucketAttrs.CORS) == 0 {
		bucketUpdate := storage.BucketAttrsToUpdate{
			CORS: []storage.CORS{corsConfig},
		}

		_, err := bucket.Update(ctx, bucketUpdate)
		if err != nil {
			return fmt.Errorf("failed to update bucket CORS: %w", err)
		}
	}

	return nil
}

func (c *CloudStorageClient) objectName(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + "/" + key
}

func (c *CloudStorageClient) Put(ctx context.Context, key string, data io.Reader, contentType string) (int64, error) {
	// Cancelling the writer's context before Close discards the upload
	// instead of finalizing a truncated object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obj := c.client.Bucket(c.bucketName).Object(c.objectName(key))
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "private, max-age=0"

	size, err := io.Copy(wc, data)
	if err != nil {
		cancel()
		wc.Close()
		return 0, fmt.Errorf("failed to copy file to GCS: %w", err)
	}

	if err := wc.Close(); err != nil {
		return 0, fmt.Errorf("failed to close writer: %w", err)
	}

	return size, nil
}

func (c *CloudStorageClient) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := c.client.Bucket(c.bucketName).Object(c.objectName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, service.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	return reader, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, key string) error {
	err := c.client.Bucket(c.bucketName).Object(c.objectName(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (c *CloudStorageClient) List(ctx context.Context) ([]service.BlobInfo, error) {
	query := &storage.Query{}
	if c.prefix != "" {
		query.Prefix = c.prefix + "/"
	}

	it := c.client.Bucket(c.bucketName).Objects(ctx, query)

	var infos []service.BlobInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		key := strings.TrimPrefix(attrs.Name, query.Prefix)
		if key == "" || strings.Contains(key, "/") {
			continue
		}
		infos = append(infos, service.BlobInfo{
			Key:        key,
			Size:       attrs.Size,
			ModifiedAt: attrs.Updated,
		})
	}

	return infos, nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
