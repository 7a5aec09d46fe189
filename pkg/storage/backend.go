// Package storage abstracts the filesystems that hold live and snapshot trees.
package storage

import (
	"context"
	"io"
	"io/fs"

	"github.com/sdejongh/dirsnap/pkg/models"
)

// Backend defines the interface for storage operations
// Implementations include the local filesystem and any go-billy filesystem.
// Errors wrap the underlying cause so that fs.ErrNotExist and
// fs.ErrPermission remain detectable with errors.Is.
type Backend interface {
	// Lstat returns metadata without following a trailing symlink
	Lstat(ctx context.Context, path string) (*models.FileInfo, error)

	// Stat returns metadata, following symlinks
	Stat(ctx context.Context, path string) (*models.FileInfo, error)

	// ReadDir lists the direct children of a directory (name and kind only)
	// in the order the underlying storage returns them
	ReadDir(ctx context.Context, path string) ([]models.DirectoryEntry, error)

	// Open opens a file for streaming reads
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadFile reads a whole file into memory
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Write creates or truncates a file with the given content, creating
	// parent directories as needed, and returns the number of bytes written
	Write(ctx context.Context, path string, reader io.Reader, perm fs.FileMode) (int64, error)

	// Readlink returns the target of a symbolic link
	Readlink(ctx context.Context, path string) (string, error)

	// Symlink creates a symbolic link at path pointing to target
	Symlink(ctx context.Context, target, path string) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// RemoveAll removes a path and any children; a missing path is not an error
	RemoveAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}

func infoFrom(path string, info fs.FileInfo) *models.FileInfo {
	return &models.FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
		Kind:    models.KindFromMode(info.Mode()),
	}
}
