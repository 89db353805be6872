// Package storage uploads rendered reports to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/config"
)

// Uploader stores report artifacts in a single bucket.
type Uploader struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewUploader connects to the configured endpoint. Wasabi and other
// S3-compatible providers work through the same client.
func NewUploader(cfg config.StorageConfig, logger *zap.Logger) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("building storage client: %w", err)
	}
	return &Uploader{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Store uploads the file at path under the given key, overwriting any
// previous object, and returns the object URI.
func (u *Uploader) Store(ctx context.Context, path, key string) (string, error) {
	_, err := u.client.FPutObject(ctx, u.bucket, key, path, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	uri := fmt.Sprintf("%s/%s/%s", u.client.EndpointURL(), u.bucket, key)
	u.logger.Info("report uploaded",
		zap.String("bucket", u.bucket),
		zap.String("key", key),
	)
	return uri, nil
}
