// internal/app/blob/local.go
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores blobs under a directory on disk. References are
// urlPrefix-relative paths so the router can serve them directly.
type Local struct {
	dir       string
	urlPrefix string
}

// NewLocal creates a directory-backed blob store. urlPrefix is the
// mount point the files are served from, e.g. "/files".
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create %s: %w", dir, err)
	}
	return &Local{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the backing directory, for mounting a file server.
func (l *Local) Dir() string { return l.dir }

func (l *Local) filePath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("blob: invalid key %q", key)
	}
	return filepath.Join(l.dir, clean), nil
}

func (l *Local) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	p, err := l.filePath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("blob: create dir for %s: %w", key, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("blob: create %s: %w", key, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", key, err)
	}
	return l.urlPrefix + "/" + key, nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := l.filePath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("blob: open %s: %w", key, err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	p, err := l.filePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: delete %s: %w", key, err)
	}
	return nil
}
