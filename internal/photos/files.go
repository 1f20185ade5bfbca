package photos

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/reminis/internal/shared"
)

// Extension is the file extension of every stored image.
const Extension = ".jpg"

// FileStore manages the private directory holding one image per record.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created lazily.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: shared.ExpandPath(dir)}
}

// Dir returns the private photo directory.
func (f *FileStore) Dir() string {
	return f.dir
}

// PathFor returns where the image for id is stored.
func (f *FileStore) PathFor(id string) string {
	return filepath.Join(f.dir, id+Extension)
}

// Contains reports whether path lies inside the private directory.
func (f *FileStore) Contains(path string) bool {
	rel, err := filepath.Rel(f.dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// EnsureDir creates the private directory if it does not exist.
func (f *FileStore) EnsureDir() error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create photo directory: %v", shared.ErrStorage, err)
	}
	return nil
}

// Import copies src into the private directory under id and returns the new path.
func (f *FileStore) Import(src, id string) (string, error) {
	if err := f.EnsureDir(); err != nil {
		return "", err
	}

	dst := f.PathFor(id)
	if err := shared.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	return dst, nil
}

// Remove deletes the file at path. A missing file is not an error.
func (f *FileStore) Remove(path string) error {
	return shared.RemoveFile(path)
}
