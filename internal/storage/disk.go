// Package storage provides the local-disk blob store backing
// attachment uploads.  Files are written under a single uploads
// directory with random hex names so original filenames never
// touch the filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iliyamo/note-vault/internal/utils"
)

// DiskStore stores blobs as flat files in one directory.  The
// location key it hands out is the full path of the written file.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the directory if needed and returns a
// store over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save streams r into a new file named by 16 random bytes plus
// the sanitized extension hint and returns the file's path.
func (d *DiskStore) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	name, err := utils.RandomHex(16)
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.dir, name+sanitizeExt(ext))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("storage: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("storage: closing %s: %w", path, err)
	}
	return path, nil
}

// Open returns a reader over a stored blob.
func (d *DiskStore) Open(location string) (io.ReadCloser, error) {
	return os.Open(location)
}

// Remove deletes a stored blob.  Removing an already missing file
// succeeds.
func (d *DiskStore) Remove(location string) error {
	err := os.Remove(location)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitizeExt keeps only a short, dot-prefixed alphanumeric
// extension; anything else is dropped.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || !strings.HasPrefix(ext, ".") || len(ext) > 12 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
