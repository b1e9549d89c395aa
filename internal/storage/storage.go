// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider
// (DigitalOcean Spaces, MinIO, AWS S3).
package storage

import (
	"context"
	"io"
)

// UploadResult describes where an uploaded object landed.
type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
}

// Storage is the interface for storing and retrieving objects.
type Storage interface {
	// Upload streams data to the store under the given key and returns its
	// public location. dispositionFilename sets the Content-Disposition
	// attachment filename so fetching the URL triggers a download.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType, dispositionFilename string) (UploadResult, error)
	// PutEmpty writes a zero-byte marker object (folder placeholder).
	PutEmpty(ctx context.Context, key string) (UploadResult, error)
	// Fetch opens the object at key for reading. The caller closes it.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object identified by key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
