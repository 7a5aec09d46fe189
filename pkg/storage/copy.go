package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/pathsafe"
)

// DefaultPlaceholder is written into directories that would otherwise be
// empty, so that version control keeps them.
const DefaultPlaceholder = ".gitkeep"

// CopyOptions controls CopyTree
type CopyOptions struct {
	// Placeholder is the file name written into empty directories.
	// An empty value disables placeholders.
	Placeholder string

	// Exclude drops matching entries (nil keeps everything)
	Exclude *pathsafe.Matcher

	// Progress is called after each file or symlink is copied with the
	// slash-separated path relative to the source root.
	Progress func(relPath string, stats CopyStats)
}

// CopyStats summarizes a tree copy
type CopyStats struct {
	Files        int
	Directories  int
	Symlinks     int
	Placeholders int
	Skipped      int
	Bytes        int64
}

// CopyTree recursively copies the directory src on from into dst on to.
// Regular files are copied byte for byte, directories are recreated and
// symlinks are recreated with the same target. Other special files are
// skipped.
func CopyTree(ctx context.Context, from Backend, src string, to Backend, dst string, opts CopyOptions) (CopyStats, error) {
	var stats CopyStats

	info, err := from.Lstat(ctx, src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, &models.ComparisonError{
				Kind:    models.KindNotFound,
				Paths:   []string{src},
				Message: fmt.Sprintf("Source directory %q does not exist", src),
				Err:     err,
			}
		}
		return stats, &models.ComparisonError{
			Kind:    models.FilesystemKind(err),
			Paths:   []string{src},
			Message: fmt.Sprintf("Failed to read source directory %q: %v", src, err),
			Err:     err,
		}
	}
	if !info.IsDir() {
		return stats, models.NewComparisonError(models.KindNotADirectory,
			fmt.Sprintf("Source path %q is not a directory", src), src)
	}

	c := &copier{ctx: ctx, from: from, to: to, opts: opts, stats: &stats}
	err = c.copyDir(src, dst, "")
	return stats, err
}

// ReplaceTree removes dst and then copies src into it
func ReplaceTree(ctx context.Context, from Backend, src string, to Backend, dst string, opts CopyOptions) (CopyStats, error) {
	if _, err := from.Lstat(ctx, src); err != nil {
		// Keep the existing destination when the source is unusable
		return CopyTree(ctx, from, src, to, dst, opts)
	}
	if err := to.RemoveAll(ctx, dst); err != nil {
		return CopyStats{}, fmt.Errorf("failed to remove %q: %w", dst, err)
	}
	return CopyTree(ctx, from, src, to, dst, opts)
}

type copier struct {
	ctx   context.Context
	from  Backend
	to    Backend
	opts  CopyOptions
	stats *CopyStats
}

func (c *copier) copyDir(src, dst, rel string) error {
	if err := c.to.MkdirAll(c.ctx, dst); err != nil {
		return err
	}
	c.stats.Directories++

	entries, err := c.from.ReadDir(c.ctx, src)
	if err != nil {
		return err
	}

	kept := 0
	for _, entry := range entries {
		entryRel := joinRel(rel, entry.Name)
		if c.opts.Exclude.Match(entryRel, entry.IsDir()) {
			c.stats.Skipped++
			continue
		}

		srcPath := filepath.Join(src, entry.Name)
		dstPath := filepath.Join(dst, entry.Name)

		switch entry.Kind {
		case models.KindDirectory:
			if err := c.copyDir(srcPath, dstPath, entryRel); err != nil {
				return err
			}
		case models.KindFile:
			if err := c.copyFile(srcPath, dstPath); err != nil {
				return err
			}
			c.progress(entryRel)
		default:
			copied, err := c.copyLink(srcPath, dstPath)
			if err != nil {
				return err
			}
			if !copied {
				c.stats.Skipped++
				continue
			}
			c.progress(entryRel)
		}
		kept++
	}

	if kept == 0 && c.opts.Placeholder != "" {
		if _, err := c.to.Write(c.ctx, filepath.Join(dst, c.opts.Placeholder), strings.NewReader(""), 0644); err != nil {
			return err
		}
		c.stats.Placeholders++
	}
	return nil
}

func (c *copier) copyFile(src, dst string) error {
	info, err := c.from.Lstat(c.ctx, src)
	if err != nil {
		return err
	}

	reader, err := c.from.Open(c.ctx, src)
	if err != nil {
		return err
	}
	defer reader.Close()

	written, err := c.to.Write(c.ctx, dst, reader, info.Mode.Perm())
	if err != nil {
		return err
	}
	c.stats.Files++
	c.stats.Bytes += written
	return nil
}

// copyLink recreates a symlink; other special files report false
func (c *copier) copyLink(src, dst string) (bool, error) {
	info, err := c.from.Lstat(c.ctx, src)
	if err != nil {
		return false, err
	}
	if info.Mode&fs.ModeSymlink == 0 {
		return false, nil
	}

	target, err := c.from.Readlink(c.ctx, src)
	if err != nil {
		return false, err
	}
	if err := c.to.Symlink(c.ctx, target, dst); err != nil {
		return false, err
	}
	c.stats.Symlinks++
	return true, nil
}

func (c *copier) progress(rel string) {
	if c.opts.Progress != nil {
		c.opts.Progress(rel, *c.stats)
	}
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return path.Join(rel, name)
}

// Usage totals the regular files under root that a copy with the same
// exclude matcher would write
func Usage(ctx context.Context, backend Backend, root string, exclude *pathsafe.Matcher) (files int, bytes int64, err error) {
	err = usage(ctx, backend, root, "", exclude, &files, &bytes)
	return files, bytes, err
}

func usage(ctx context.Context, backend Backend, dir, rel string, exclude *pathsafe.Matcher, files *int, bytes *int64) error {
	entries, err := backend.ReadDir(ctx, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		entryRel := joinRel(rel, entry.Name)
		if exclude.Match(entryRel, entry.IsDir()) {
			continue
		}
		p := filepath.Join(dir, entry.Name)
		switch entry.Kind {
		case models.KindDirectory:
			if err := usage(ctx, backend, p, entryRel, exclude, files, bytes); err != nil {
				return err
			}
		case models.KindFile:
			info, err := backend.Lstat(ctx, p)
			if err != nil {
				return err
			}
			*files++
			*bytes += info.Size
		}
	}
	return nil
}
