// Package blob stores file bytes in S3-compatible object storage.
package blob

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Store keeps object bytes under string keys. Open and Delete of a missing
// key return common.ErrorNotFound.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that downloads key as an
	// attachment named filename.
	PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}

// Options configures the S3 and MinIO drivers.
type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// New builds the store named by driver: "s3", "minio" or "memory".
func New(ctx context.Context, driver string, opts Options) (Store, error) {
	switch driver {
	case "s3":
		return NewS3Store(ctx, opts)
	case "minio":
		return NewMinioStore(ctx, opts)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
