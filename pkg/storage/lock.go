package storage

import (
	"context"
	_ "crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/opencontainers/go-digest"
)

// DefaultLockRetry is how often a blocked lock attempt retries
const DefaultLockRetry = 50 * time.Millisecond

// Locker serializes snapshot updates
type Locker interface {
	// Lock blocks until the lock guarding path is held or ctx is done
	Lock(ctx context.Context, path string) (Unlocker, error)
}

// Unlocker releases a held lock
type Unlocker interface {
	Unlock() error
}

// FileLocker takes an advisory flock in Dir (DefaultLockDir when empty)
type FileLocker struct {
	Retry time.Duration
	Dir   string
}

// Lock acquires the exclusive file lock guarding path
func (l FileLocker) Lock(ctx context.Context, path string) (Unlocker, error) {
	retry := l.Retry
	if retry <= 0 {
		retry = DefaultLockRetry
	}
	held, err := LockIn(ctx, l.Dir, path, retry)
	if err != nil {
		return nil, err
	}
	return held, nil
}

// NopLocker never blocks; for backends that do not live on disk
type NopLocker struct{}

// Lock returns a no-op unlocker
func (NopLocker) Lock(ctx context.Context, path string) (Unlocker, error) {
	return nopUnlocker{}, nil
}

type nopUnlocker struct{}

func (nopUnlocker) Unlock() error { return nil }

// FileLock is a held flock
type FileLock struct {
	lock *flock.Flock
}

// DefaultLockDir holds lock files outside any snapshot tree
func DefaultLockDir() string {
	return filepath.Join(os.TempDir(), "dirsnap-locks")
}

// LockPath returns the lock file guarding path: "<dir>/<sha256 of the
// absolute path>.lock". An empty dir means DefaultLockDir.
func LockPath(dir, path string) (string, error) {
	if dir == "" {
		dir = DefaultLockDir()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return filepath.Join(dir, digest.FromString(filepath.Clean(abs)).Encoded()+".lock"), nil
}

// Lock blocks until an exclusive lock guarding path is held. The lock file
// lives in DefaultLockDir so snapshot directories stay free of it.
func Lock(ctx context.Context, path string, retry time.Duration) (*FileLock, error) {
	return LockIn(ctx, "", path, retry)
}

// LockIn is Lock with the lock file kept in dir
func LockIn(ctx context.Context, dir, path string, retry time.Duration) (*FileLock, error) {
	lockPath, err := LockPath(dir, path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLockContext(ctx, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %q: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %q", lockPath)
	}
	return &FileLock{lock: fl}, nil
}

// Path returns the lock file path
func (l *FileLock) Path() string {
	return l.lock.Path()
}

// Unlock releases the lock and closes the lock file
func (l *FileLock) Unlock() error {
	if err := l.lock.Close(); err != nil {
		return fmt.Errorf("failed to unlock %q: %w", l.lock.Path(), err)
	}
	return nil
}
