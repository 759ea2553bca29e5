package repository

import (
	"context"
	"io"
)

// BlobStorage is the object-storage bucket holding video files. The video
// service streams uploads through it and records only the returned URL.
type BlobStorage interface {
	// Upload streams an object under key and returns its public URL.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
