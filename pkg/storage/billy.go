package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/sdejongh/dirsnap/pkg/models"
)

// Billy adapts a go-billy filesystem, so trees built in memory (memfs) or
// chrooted on disk (osfs) can be snapshotted and compared.
type Billy struct {
	fs billy.Filesystem
}

// NewBilly wraps an existing go-billy filesystem
func NewBilly(fsys billy.Filesystem) *Billy {
	return &Billy{fs: fsys}
}

// NewMemory creates a backend over a fresh in-memory filesystem
func NewMemory() *Billy {
	return &Billy{fs: memfs.New()}
}

// Raw returns the underlying go-billy filesystem
func (b *Billy) Raw() billy.Filesystem {
	return b.fs
}

// Lstat returns metadata without following symlinks
func (b *Billy) Lstat(ctx context.Context, path string) (*models.FileInfo, error) {
	info, err := b.fs.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("billy: lstat %q: %w", path, err)
	}
	return infoFrom(path, info), nil
}

// Stat returns file metadata
func (b *Billy) Stat(ctx context.Context, path string) (*models.FileInfo, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", path, err)
	}
	return infoFrom(path, info), nil
}

// ReadDir lists a directory
func (b *Billy) ReadDir(ctx context.Context, path string) ([]models.DirectoryEntry, error) {
	list, err := b.fs.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", path, err)
	}

	entries := make([]models.DirectoryEntry, 0, len(list))
	for _, info := range list {
		entries = append(entries, models.DirectoryEntry{
			Name: info.Name(),
			Kind: models.KindFromMode(info.Mode()),
		})
	}
	return entries, nil
}

// Open opens a file for reading
func (b *Billy) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := b.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", path, err)
	}
	return f, nil
}

// ReadFile reads a whole file
func (b *Billy) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("billy: readfile %q: %w", path, err)
	}
	return data, nil
}

// Write creates or overwrites a file
func (b *Billy) Write(ctx context.Context, path string, reader io.Reader, perm fs.FileMode) (int64, error) {
	if err := b.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("billy: mkdirall %q: %w", filepath.Dir(path), err)
	}

	if perm == 0 {
		perm = 0644
	}
	f, err := b.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("billy: openfile %q: %w", path, err)
	}
	defer f.Close()

	written, err := io.Copy(f, reader)
	if err != nil {
		return written, fmt.Errorf("billy: write %q: %w", path, err)
	}
	return written, nil
}

// Readlink returns a symlink target
func (b *Billy) Readlink(ctx context.Context, path string) (string, error) {
	target, err := b.fs.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("billy: readlink %q: %w", path, err)
	}
	return target, nil
}

// Symlink creates a symlink
func (b *Billy) Symlink(ctx context.Context, target, path string) error {
	if err := b.fs.Symlink(target, path); err != nil {
		return fmt.Errorf("billy: symlink %q: %w", path, err)
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (b *Billy) MkdirAll(ctx context.Context, path string) error {
	if err := b.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", path, err)
	}
	return nil
}

// RemoveAll removes a path and its children
func (b *Billy) RemoveAll(ctx context.Context, path string) error {
	if err := util.RemoveAll(b.fs, path); err != nil {
		return fmt.Errorf("billy: removeall %q: %w", path, err)
	}
	return nil
}

// Close releases resources (no-op)
func (b *Billy) Close() error {
	return nil
}
