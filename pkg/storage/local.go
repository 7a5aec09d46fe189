package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"

	"github.com/sdejongh/dirsnap/pkg/models"
)

// Local is the OS filesystem backend. Paths are used as given.
type Local struct{}

// NewLocal creates a new local filesystem backend
func NewLocal() *Local {
	return &Local{}
}

// Lstat returns metadata without following symlinks
func (l *Local) Lstat(ctx context.Context, path string) (*models.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat: %w", err)
	}
	return infoFrom(path, info), nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*models.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return infoFrom(path, info), nil
}

// ReadDir lists a directory; os.ReadDir returns entries sorted by name
func (l *Local) ReadDir(ctx context.Context, path string) ([]models.DirectoryEntry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]models.DirectoryEntry, 0, len(dirEntries))
	for _, d := range dirEntries {
		entries = append(entries, models.DirectoryEntry{
			Name: d.Name(),
			Kind: models.KindFromMode(d.Type()),
		})
	}
	return entries, nil
}

// Open opens a file for reading
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// ReadFile maps the file into memory and copies it out
func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map file: %w", err)
	}
	defer reader.Close()

	data := make([]byte, reader.Len())
	if _, err := reader.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Write creates or overwrites a file
func (l *Local) Write(ctx context.Context, path string, reader io.Reader, perm fs.FileMode) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	if perm == 0 {
		perm = 0644
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return written, fmt.Errorf("failed to write file: %w", err)
	}
	return written, nil
}

// Readlink returns a symlink target
func (l *Local) Readlink(ctx context.Context, path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("failed to read link: %w", err)
	}
	return target, nil
}

// Symlink creates a symlink
func (l *Local) Symlink(ctx context.Context, target, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Symlink(target, path); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// RemoveAll removes a file or directory tree
func (l *Local) RemoveAll(ctx context.Context, path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
