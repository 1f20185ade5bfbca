// Package media exports stored photos into the user's public media library.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/reminis/internal/shared"
)

// PermissionStatus is the outcome of a permission request.
type PermissionStatus int

const (
	PermissionUndetermined PermissionStatus = iota
	PermissionGranted
	PermissionDenied
)

func (s PermissionStatus) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// Asset is a file written into the media library.
type Asset struct {
	ID   string
	Path string
}

// Library is a write-only media library guarded by a permission.
type Library interface {
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	CreateAsset(ctx context.Context, path string) (*Asset, error)
}

// DirLibrary is a [Library] backed by a directory such as ~/Pictures/Reminis.
//
// Permission is granted when the library is allowed by configuration and its directory can be created.
// The answer is remembered for the lifetime of the value.
type DirLibrary struct {
	dir   string
	allow bool

	mu     sync.Mutex
	status PermissionStatus
}

// NewDirLibrary creates a library rooted at dir.
func NewDirLibrary(dir string, allow bool) *DirLibrary {
	return &DirLibrary{dir: shared.ExpandPath(dir), allow: allow}
}

// Dir returns the library directory.
func (l *DirLibrary) Dir() string {
	return l.dir
}

// RequestPermission asks for write access to the library directory.
func (l *DirLibrary) RequestPermission(ctx context.Context) (PermissionStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != PermissionUndetermined {
		return l.status, nil
	}

	if !l.allow {
		l.status = PermissionDenied
		return l.status, nil
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		l.status = PermissionDenied
		return l.status, fmt.Errorf("%w: %v", shared.ErrPermissionDenied, err)
	}

	l.status = PermissionGranted
	return l.status, nil
}

// CreateAsset copies the file at path into the library without overwriting existing assets.
func (l *DirLibrary) CreateAsset(ctx context.Context, path string) (*Asset, error) {
	l.mu.Lock()
	granted := l.status == PermissionGranted
	l.mu.Unlock()

	if !granted {
		return nil, shared.ErrPermissionDenied
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := shared.UniquePath(filepath.Join(l.dir, filepath.Base(path)))
	if err := shared.CopyFile(path, dst); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return &Asset{ID: shared.GenerateID(), Path: dst}, nil
}
