package loader

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/forumdb/forumdb/internal/config"
	apperrors "github.com/forumdb/forumdb/pkg/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectSource opens resources from a MinIO/S3 bucket, under an optional key prefix.
type ObjectSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectSource creates a MinIO client for cfg. The bucket must already exist.
func NewObjectSource(ctx context.Context, cfg config.MinIOConfig) (*ObjectSource, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		return nil, apperrors.Newf(apperrors.ErrResourceNotFound, "bucket %s", cfg.Bucket)
	}
	return &ObjectSource{client: mc, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *ObjectSource) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Check fails with ErrResourceNotFound unless every resource is present.
func (s *ObjectSource) Check(ctx context.Context, resources ...string) error {
	for _, r := range resources {
		if _, err := s.client.StatObject(ctx, s.bucket, s.key(FileName(r)), minio.StatObjectOptions{}); err != nil {
			return apperrors.Newf(apperrors.ErrResourceNotFound, "%s in bucket %s: %v", FileName(r), s.bucket, err)
		}
	}
	return nil
}

func (s *ObjectSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	// stat so a missing object fails here rather than mid-parse
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, apperrors.Newf(apperrors.ErrResourceNotFound, "%s in bucket %s: %v", name, s.bucket, err)
	}
	return obj, nil
}
