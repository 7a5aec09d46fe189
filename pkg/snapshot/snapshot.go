// Package snapshot ties the comparison engine to test identity: it derives
// where a test's snapshot lives, creates or replaces it in update mode and
// otherwise compares the received directory against it.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/sdejongh/dirsnap/pkg/classify"
	"github.com/sdejongh/dirsnap/pkg/compare"
	"github.com/sdejongh/dirsnap/pkg/diff"
	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/pathsafe"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

const (
	// DefaultDirName is the directory, next to the test file, holding snapshots
	DefaultDirName = "__dir_snapshots__"

	// EnvUpdate switches MatchDir into update mode
	EnvUpdate = "DIRSNAP_UPDATE"

	// DefaultUpdateHint tells users how to refresh snapshots
	DefaultUpdateHint = "Run with " + EnvUpdate + "=1"
)

// ID derives the stable snapshot identifier for a test
func ID(testPath, testName string) string {
	sum := sha256.Sum256([]byte(testPath + "/" + testName))
	return hex.EncodeToString(sum[:])
}

// Path returns where the snapshot with the given id lives for a test file
func Path(testPath, id string) string {
	return PathIn(testPath, DefaultDirName, id)
}

// PathIn is Path with a custom snapshot directory name
func PathIn(testPath, dirName, id string) string {
	return filepath.Join(filepath.Dir(testPath), dirName, id)
}

// Options configures a Matcher
type Options struct {
	// DirName overrides DefaultDirName
	DirName string

	// Update replaces the snapshot instead of comparing against it
	Update bool

	// Placeholder is written into empty directories of a new snapshot
	Placeholder string

	// UpdateHint overrides DefaultUpdateHint in mismatch messages
	UpdateHint string

	Classify classify.Options
	Renderer *diff.Renderer
	Exclude  *pathsafe.Matcher

	// Live and Store hold the received trees and the snapshots.
	// Both default to the local filesystem.
	Live  storage.Backend
	Store storage.Backend

	// Locker guards updates; defaults to a file lock for a local store
	Locker storage.Locker

	// Progress is forwarded to the tree copy during updates
	Progress func(relPath string, stats storage.CopyStats)

	// TestPath is read by MatchDir only; it replaces the caller's source
	// file as the test identity
	TestPath string

	Logger logging.Logger
}

// Request identifies the test and the directory it produced
type Request struct {
	TestPath string
	TestName string
	Received string
}

// Result is the verdict for one request. Failures never surface as Go
// errors; Message carries the full explanation instead.
type Result struct {
	Pass    bool
	Message string

	// Kind classifies a failure
	Kind models.ErrorKind

	// Created is set when the snapshot was written
	Created bool

	SnapshotPath string
	Stats        storage.CopyStats
}

// Matcher checks received directories against stored snapshots
type Matcher struct {
	opts   Options
	logger logging.Logger
}

// NewMatcher fills in defaults and returns a matcher
func NewMatcher(opts Options) *Matcher {
	if opts.DirName == "" {
		opts.DirName = DefaultDirName
	}
	if opts.UpdateHint == "" {
		opts.UpdateHint = DefaultUpdateHint
	}
	if opts.Live == nil {
		opts.Live = storage.NewLocal()
	}
	if opts.Store == nil {
		opts.Store = storage.NewLocal()
	}
	if opts.Locker == nil {
		if _, ok := opts.Store.(*storage.Local); ok {
			opts.Locker = storage.FileLocker{}
		} else {
			opts.Locker = storage.NopLocker{}
		}
	}
	return &Matcher{opts: opts, logger: logging.OrNull(opts.Logger)}
}

// Match validates the request, then updates or compares the snapshot
func (m *Matcher) Match(ctx context.Context, req Request) Result {
	if req.TestPath == "" {
		return fail(models.KindPathInvalid, "testPath is not defined")
	}
	if req.TestName == "" {
		return fail(models.KindPathInvalid, "currentTestName is not defined")
	}

	received, result, ok := m.checkReceived(ctx, req.Received)
	if !ok {
		return result
	}

	snapshotRoot := filepath.Join(filepath.Dir(req.TestPath), m.opts.DirName)
	snapshotPath, err := pathsafe.ValidatePath(PathIn(req.TestPath, m.opts.DirName, ID(req.TestPath, req.TestName)), snapshotRoot)
	if err != nil {
		return fail(models.KindPathInvalid, err.Error())
	}

	logger := m.logger.WithFields(logging.Fields{
		"test":     req.TestName,
		"received": received,
		"snapshot": snapshotPath,
	})

	if m.opts.Update {
		return m.update(ctx, logger, received, snapshotPath)
	}

	cmp := compare.NewTreeComparator(m.opts.Live, m.opts.Store, compare.Options{
		Classify:   m.opts.Classify,
		Renderer:   m.opts.Renderer,
		Exclude:    m.opts.Exclude,
		UpdateHint: m.opts.UpdateHint,
		Logger:     logger,
	})
	if err := cmp.Compare(ctx, received, snapshotPath); err != nil {
		logger.Debug(ctx, "snapshot mismatch", logging.Fields{"kind": string(models.KindOf(err))})
		res := fail(models.KindOf(err), err.Error())
		res.SnapshotPath = snapshotPath
		return res
	}

	logger.Debug(ctx, "snapshot matched", nil)
	return Result{Pass: true, Message: "ok", SnapshotPath: snapshotPath}
}

func (m *Matcher) checkReceived(ctx context.Context, received string) (string, Result, bool) {
	if received == "" {
		return "", fail(models.KindPathInvalid, "Expected received value to be a non-empty path"), false
	}
	if !pathsafe.IsAbsolute(received) {
		return "", fail(models.KindPathInvalid, fmt.Sprintf(
			"Expected path to be absolute, but received relative path: %q. Use an absolute path like \"/full/path/to/directory\"",
			received)), false
	}

	clean, err := pathsafe.ValidatePath(received, "")
	if err != nil {
		return "", fail(models.KindPathInvalid, err.Error()), false
	}

	info, err := m.opts.Live.Lstat(ctx, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fail(models.KindNotFound, fmt.Sprintf(
				"Directory %q does not exist. Check the path and ensure the directory exists before running the test.",
				received)), false
		}
		return "", fail(models.FilesystemKind(err), fmt.Sprintf("Failed to access %q: %v", received, err)), false
	}
	if !info.IsDir() {
		what := "a file"
		if info.Kind == models.KindOther {
			what = "a special file"
		}
		return "", fail(models.KindNotADirectory, fmt.Sprintf("Expected %q to be a directory, but it's %s", received, what)), false
	}
	return clean, Result{}, true
}

func (m *Matcher) update(ctx context.Context, logger logging.Logger, received, snapshotPath string) Result {
	lock, err := m.opts.Locker.Lock(ctx, snapshotPath)
	if err != nil {
		logger.Error(ctx, "failed to lock snapshot", err, nil)
		return fail(models.KindFilesystem, fmt.Sprintf("Failed to lock snapshot %q: %v", snapshotPath, err))
	}
	defer lock.Unlock()

	stats, err := storage.ReplaceTree(ctx, m.opts.Live, received, m.opts.Store, snapshotPath, storage.CopyOptions{
		Placeholder: m.opts.Placeholder,
		Exclude:     m.opts.Exclude,
		Progress:    m.opts.Progress,
	})
	if err != nil {
		logger.Error(ctx, "failed to write snapshot", err, nil)
		kind := models.KindOf(err)
		if kind == "" {
			kind = models.FilesystemKind(err)
		}
		res := fail(kind, err.Error())
		res.SnapshotPath = snapshotPath
		return res
	}

	logger.Info(ctx, "snapshot created", logging.Fields{"files": stats.Files, "bytes": stats.Bytes})
	return Result{
		Pass:         true,
		Message:      "snapshot created",
		Created:      true,
		SnapshotPath: snapshotPath,
		Stats:        stats,
	}
}

func fail(kind models.ErrorKind, msg string) Result {
	return Result{Kind: kind, Message: msg}
}
