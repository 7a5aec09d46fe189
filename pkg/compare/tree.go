package compare

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sdejongh/dirsnap/pkg/classify"
	"github.com/sdejongh/dirsnap/pkg/diff"
	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/pathsafe"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

// DefaultUpdateHint is appended to errors that an update would resolve
const DefaultUpdateHint = "Run with update mode"

// maxAvailableNames caps the snapshot listing quoted in missing-entry errors
const maxAvailableNames = 5

// Options configures a TreeComparator
type Options struct {
	// Classify tunes binary detection and streaming thresholds
	Classify classify.Options

	// Renderer formats content diffs; nil uses the default context width
	Renderer *diff.Renderer

	// Exclude drops matching entries from both sides before comparing
	Exclude *pathsafe.Matcher

	// UpdateHint is the remedy suggested for missing or stale snapshots,
	// e.g. "Run with DIRSNAP_UPDATE=1". Empty disables the hint.
	UpdateHint string

	Logger logging.Logger
}

// DefaultOptions returns options with the default thresholds and hint
func DefaultOptions() Options {
	return Options{
		Classify:   classify.DefaultOptions(),
		Renderer:   diff.NewRenderer(),
		UpdateHint: DefaultUpdateHint,
	}
}

// TreeComparator walks a live tree and its snapshot side by side and stops
// at the first difference. Entries present only in the snapshot are not
// reported.
type TreeComparator struct {
	live     storage.Backend
	snapshot storage.Backend
	files    *FileComparator
	renderer *diff.Renderer
	exclude  *pathsafe.Matcher
	hint     string
	logger   logging.Logger
}

// NewTreeComparator creates a comparator for trees stored on live and snapshot
func NewTreeComparator(live, snapshot storage.Backend, opts Options) *TreeComparator {
	logger := logging.OrNull(opts.Logger)
	renderer := opts.Renderer
	if renderer == nil {
		renderer = diff.NewRenderer()
	}
	return &TreeComparator{
		live:     live,
		snapshot: snapshot,
		files:    NewFileComparator(live, snapshot, opts.Classify, logger),
		renderer: renderer,
		exclude:  opts.Exclude,
		hint:     opts.UpdateHint,
		logger:   logger,
	}
}

// Files returns the file comparator used for regular files
func (c *TreeComparator) Files() *FileComparator {
	return c.files
}

// Compare checks both roots and then compares the trees
func (c *TreeComparator) Compare(ctx context.Context, livePath, snapshotPath string) error {
	return c.CompareDirectories(ctx, livePath, snapshotPath, false)
}

// CompareDirectories compares the directory at livePath with the one at
// snapshotPath. Unless skipTopLevelTypeCheck is set, both roots must exist
// and be directories. Any difference is returned as a *models.ComparisonError.
func (c *TreeComparator) CompareDirectories(ctx context.Context, livePath, snapshotPath string, skipTopLevelTypeCheck bool) error {
	if !skipTopLevelTypeCheck {
		if err := c.checkLiveRoot(ctx, livePath); err != nil {
			return err
		}
		if err := c.checkSnapshotRoot(ctx, snapshotPath); err != nil {
			return err
		}
	}

	c.logger.Debug(ctx, "comparing directories", logging.Fields{"live": livePath, "snapshot": snapshotPath})
	return c.compareDir(ctx, livePath, snapshotPath, "")
}

func (c *TreeComparator) checkLiveRoot(ctx context.Context, p string) error {
	info, err := c.live.Lstat(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return rootError(models.KindNotFound, err, p, "Directory %q does not exist", p)
		case errors.Is(err, fs.ErrPermission):
			return rootError(models.KindPermissionDenied, err, p, "Permission denied accessing directory %q", p)
		default:
			return rootError(models.KindFilesystem, err, p, "Failed to access directory %q: %v", p, err)
		}
	}
	if !info.IsDir() {
		return models.NewComparisonError(models.KindNotADirectory,
			fmt.Sprintf("Expected %q to be a directory, but it's %s", p, article(info.Kind)), p)
	}
	return nil
}

func (c *TreeComparator) checkSnapshotRoot(ctx context.Context, p string) error {
	info, err := c.snapshot.Lstat(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return rootError(models.KindNotFound, err, p, "Snapshot directory %q does not exist.%s", p, c.hintTo("create it"))
		case errors.Is(err, fs.ErrPermission):
			return rootError(models.KindPermissionDenied, err, p, "Permission denied accessing snapshot directory %q", p)
		default:
			return rootError(models.KindFilesystem, err, p, "Failed to access snapshot directory %q: %v", p, err)
		}
	}
	if !info.IsDir() {
		return models.NewComparisonError(models.KindNotADirectory,
			fmt.Sprintf("Expected snapshot %q to be a directory, but it's %s.%s", p, article(info.Kind), c.hintTo("update")), p)
	}
	return nil
}

func (c *TreeComparator) compareDir(ctx context.Context, livePath, snapshotPath, rel string) error {
	liveEntries, err := c.list(ctx, c.live, livePath, rel)
	if err != nil {
		return err
	}
	snapEntries, err := c.list(ctx, c.snapshot, snapshotPath, rel)
	if err != nil {
		return err
	}

	byName := make(map[string]models.DirectoryEntry, len(snapEntries))
	for _, e := range snapEntries {
		byName[e.Name] = e
	}

	for _, entry := range liveEntries {
		liveChild := filepath.Join(livePath, entry.Name)
		snapChild := filepath.Join(snapshotPath, entry.Name)

		counterpart, ok := byName[entry.Name]
		if !ok {
			return models.NewComparisonError(models.KindEntryMissing,
				fmt.Sprintf("File/directory %q exists in source but not in snapshot. Available in snapshot: %s.%s",
					entry.Name, available(snapEntries), c.hintTo("update")),
				liveChild, snapChild)
		}

		if entry.Kind != counterpart.Kind {
			return models.NewComparisonError(models.KindTypeMismatch,
				fmt.Sprintf("Type mismatch: %q is %s in source but %s in snapshot",
					entry.Name, article(entry.Kind), article(counterpart.Kind)),
				liveChild, snapChild)
		}

		switch entry.Kind {
		case models.KindDirectory:
			if err := c.compareDir(ctx, liveChild, snapChild, joinRel(rel, entry.Name)); err != nil {
				return err
			}
		case models.KindFile:
			if err := c.compareFile(ctx, liveChild, snapChild); err != nil {
				return err
			}
		default:
			// special files match on name and kind alone
		}
	}
	return nil
}

func (c *TreeComparator) compareFile(ctx context.Context, livePath, snapshotPath string) error {
	_, err := c.CompareFile(ctx, livePath, snapshotPath)
	return err
}

// CompareFile compares one regular file with its snapshot, rendering a line
// diff for small text files that differ. The comparison is returned
// whenever both files could be classified.
func (c *TreeComparator) CompareFile(ctx context.Context, livePath, snapshotPath string) (*models.FileComparison, error) {
	result, err := c.files.CompareFiles(ctx, livePath, snapshotPath)
	if err != nil || !result.NeedsDetailedDiff {
		return result, err
	}

	liveContent, err := c.readFile(ctx, c.live, livePath)
	if err != nil {
		return result, err
	}
	snapContent, err := c.readFile(ctx, c.snapshot, snapshotPath)
	if err != nil {
		return result, err
	}
	if liveContent == snapContent {
		result.Outcome = models.OutcomeIdentical
		return result, nil
	}

	result.Outcome = models.OutcomeMismatch
	report := c.renderer.Render(liveContent, snapContent, livePath, snapshotPath)
	msg := "File content differs:\n\n" + report.String()
	if c.hint != "" {
		msg += "\n\n" + c.hint + " to update."
	}
	return result, models.NewComparisonError(models.KindContentDiffers, msg, livePath, snapshotPath)
}

func (c *TreeComparator) list(ctx context.Context, backend storage.Backend, dir, rel string) ([]models.DirectoryEntry, error) {
	entries, err := backend.ReadDir(ctx, dir)
	if err != nil {
		return nil, &models.ComparisonError{
			Kind:    models.FilesystemKind(err),
			Paths:   []string{dir},
			Message: fmt.Sprintf("Failed to read directory %q: %v", dir, err),
			Err:     err,
		}
	}
	if c.exclude == nil {
		return entries, nil
	}

	kept := entries[:0]
	for _, e := range entries {
		if !c.exclude.Match(joinRel(rel, e.Name), e.IsDir()) {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

func (c *TreeComparator) readFile(ctx context.Context, backend storage.Backend, p string) (string, error) {
	data, err := backend.ReadFile(ctx, p)
	if err != nil {
		return "", &models.ComparisonError{
			Kind:    models.FilesystemKind(err),
			Paths:   []string{p},
			Message: fmt.Sprintf("Failed to read file %q: %v", p, err),
			Err:     err,
		}
	}
	return string(data), nil
}

// hintTo renders " <hint> to <action>." or nothing when no hint is set
func (c *TreeComparator) hintTo(action string) string {
	if c.hint == "" {
		return ""
	}
	return " " + c.hint + " to " + action + "."
}

func rootError(kind models.ErrorKind, cause error, p string, format string, args ...any) error {
	return &models.ComparisonError{
		Kind:    kind,
		Paths:   []string{p},
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// available lists up to maxAvailableNames snapshot entry names
func available(entries []models.DirectoryEntry) string {
	if len(entries) == 0 {
		return "(empty)"
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)

	if len(names) <= maxAvailableNames {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(names[:maxAvailableNames], ", "), len(names)-maxAvailableNames)
}

func article(kind models.EntryKind) string {
	switch kind {
	case models.KindFile:
		return "a file"
	case models.KindDirectory:
		return "a directory"
	default:
		return "a " + string(kind)
	}
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return path.Join(rel, name)
}
