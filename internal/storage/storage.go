package storage

import "context"

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the training
// pipeline needs for report and weight-snapshot artifacts.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	UploadObject(ctx context.Context, key string, data []byte) error
	DownloadObject(ctx context.Context, key string) ([]byte, error)
}

// NoopStorage discards uploads; used when report archiving is disabled.
type NoopStorage struct{}

func (NoopStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return nil, nil
}

func (NoopStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	return nil
}

func (NoopStorage) DownloadObject(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}
