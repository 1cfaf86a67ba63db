// internal/app/blob/blob.go

// Package blob stores submission image bytes outside the document
// store. Records keep only the key and the reference returned by
// Upload; deleting a submission releases its blobs through Delete.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// Store is the blob backend. Local serves files from a directory;
// MinIO talks to S3-compatible hosted storage.
type Store interface {
	// Upload stores the bytes under key and returns the reference to
	// save on the record (a URL or serve path).
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Open returns the stored bytes for a key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete releases the blob. Deleting a missing blob is not an
	// error; the record is the source of truth.
	Delete(ctx context.Context, key string) error
}

// NewKey builds a unique storage key for a submission image:
// submissions/YYYY/MM/<uuid><ext>.
func NewKey(now time.Time, ext string) string {
	dateDir := fmt.Sprintf("submissions/%04d/%02d", now.Year(), now.Month())
	return path.Join(dateDir, uuid.New().String()+ext)
}
