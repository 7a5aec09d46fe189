// Package compare checks a live directory tree against its snapshot.
package compare

import (
	"context"
	"fmt"

	"github.com/sdejongh/dirsnap/pkg/classify"
	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

// FileComparator decides whether a live file matches its snapshot
// counterpart without reading text files line by line
type FileComparator struct {
	live     *classify.Classifier
	snapshot *classify.Classifier
	logger   logging.Logger
}

// NewFileComparator creates a comparator reading live files from live and
// snapshot files from snapshot
func NewFileComparator(live, snapshot storage.Backend, opts classify.Options, logger logging.Logger) *FileComparator {
	logger = logging.OrNull(logger)
	return &FileComparator{
		live:     classify.New(live, opts, logger),
		snapshot: classify.New(snapshot, opts, logger),
		logger:   logger,
	}
}

// CompareFiles classifies both files. Binary and large files are settled by
// digest; small text files come back with NeedsDetailedDiff set so the
// caller can render a line diff. A mismatch returns the comparison together
// with a *models.ComparisonError.
func (c *FileComparator) CompareFiles(ctx context.Context, livePath, snapshotPath string) (*models.FileComparison, error) {
	live, err := c.live.Classify(ctx, livePath)
	if err != nil {
		return nil, err
	}
	snap, err := c.snapshot.Classify(ctx, snapshotPath)
	if err != nil {
		return nil, err
	}

	result := &models.FileComparison{
		LivePath:     livePath,
		SnapshotPath: snapshotPath,
		Live:         live,
		Snapshot:     snap,
	}

	if live.IsBinary != snap.IsBinary {
		result.Outcome = models.OutcomeMismatch
		return result, models.NewComparisonError(models.KindFileTypeMismatch,
			fmt.Sprintf("File type mismatch: %q is %s but %q is %s",
				livePath, textOrBinary(live.IsBinary), snapshotPath, textOrBinary(snap.IsBinary)),
			livePath, snapshotPath)
	}

	binary := live.IsBinary
	stream := live.ShouldStream || snap.ShouldStream
	if !binary && !stream {
		result.Outcome = models.OutcomeNeedsDetailedDiff
		result.NeedsDetailedDiff = true
		return result, nil
	}

	same := live.Size == snap.Size
	if same {
		if live.Digest, err = digest(ctx, c.live, livePath, stream); err != nil {
			return nil, err
		}
		if snap.Digest, err = digest(ctx, c.snapshot, snapshotPath, stream); err != nil {
			return nil, err
		}
		same = live.Digest == snap.Digest
	}

	c.logger.Debug(ctx, "compared file digests", logging.Fields{
		"live":      livePath,
		"snapshot":  snapshotPath,
		"binary":    binary,
		"streaming": stream,
		"identical": same,
	})

	if same {
		result.Outcome = models.OutcomeIdentical
		return result, nil
	}

	result.Outcome = models.OutcomeMismatch
	if binary {
		return result, models.NewComparisonError(models.KindBinaryDiffers,
			fmt.Sprintf("Binary files differ: %q and %q have different content", livePath, snapshotPath),
			livePath, snapshotPath)
	}
	return result, models.NewComparisonError(models.KindLargeDiffers,
		fmt.Sprintf("Large files differ: %q and %q have different content. Use a diff tool to compare.", livePath, snapshotPath),
		livePath, snapshotPath)
}

func digest(ctx context.Context, c *classify.Classifier, path string, stream bool) (string, error) {
	var (
		sum string
		err error
	)
	if stream {
		sum, err = c.DigestStream(ctx, path)
	} else {
		sum, err = c.Digest(ctx, path)
	}
	if err != nil {
		return "", &models.ComparisonError{
			Kind:    models.FilesystemKind(err),
			Paths:   []string{path},
			Message: fmt.Sprintf("Failed to read file %q: %v", path, err),
			Err:     err,
		}
	}
	return sum, nil
}

func textOrBinary(binary bool) string {
	if binary {
		return "binary"
	}
	return "text"
}
