package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStorage keeps artifacts on the local filesystem, for development
// and tests. Objects are served by whoever fronts root at baseURL.
type DiskStorage struct {
	root    string
	baseURL string
}

func NewDiskStorage(root, baseURL string) *DiskStorage {
	return &DiskStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload writes the object under root. Without upsert an existing file
// at the same path is an error, matching the bucket semantics.
func (s *DiskStorage) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))

	if !upsert {
		if _, err := os.Stat(full); err == nil {
			return fmt.Errorf("upload %s: object already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}

func (s *DiskStorage) PublicURL(path string) string {
	return s.baseURL + "/" + path
}
