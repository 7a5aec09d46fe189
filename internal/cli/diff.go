package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirsnap/pkg/compare"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

// NewDiffCommand creates the diff command
func NewDiffCommand(global *GlobalFlags) *cobra.Command {
	var contextLines int

	cmd := &cobra.Command{
		Use:   "diff ACTUAL EXPECTED",
		Short: "Compare two files the way snapshots are compared",
		Long: `Compare two files with the snapshot rules.

Small text files are compared line by line and differences are shown with
surrounding context. Binary files and files above the streaming threshold
are compared by SHA-256 digest.`,
		Example: `  dirsnap diff out/report.txt __dir_snapshots__/abc123/report.txt
  dirsnap diff --context 1 a.txt b.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, global, args[0], args[1], contextLines)
		},
	}

	cmd.Flags().IntVarP(&contextLines, "context", "C", -1, "lines of context around changes (default from config)")

	return cmd
}

func runDiff(cmd *cobra.Command, global *GlobalFlags, actualArg, expectedArg string, contextLines int) error {
	actual, err := resolvePath("actual", actualArg)
	if err != nil {
		return err
	}
	expected, err := resolvePath("expected", expectedArg)
	if err != nil {
		return err
	}

	r, err := newRun(cmd, global, "diff")
	if err != nil {
		return err
	}
	r.report.Live = actual
	r.report.Snapshot = expected

	opts := compareOptions(r.cfg, nil)
	opts.UpdateHint = ""
	opts.Logger = r.logger
	if contextLines >= 0 {
		opts.Renderer.ContextLines = contextLines
	}

	backend := storage.NewLocal()
	for _, p := range []string{actual, expected} {
		if err := requireFile(r, backend, p); err != nil {
			r.fail(err)
			return r.finish()
		}
	}

	result, err := compare.NewTreeComparator(backend, backend, opts).CompareFile(r.ctx, actual, expected)
	if result != nil {
		r.report.Files = append(r.report.Files, *result.Live, *result.Snapshot)
	}
	if err != nil {
		r.fail(err)
	}
	return r.finish()
}

// requireFile fails unless p exists and is not a directory
func requireFile(r *run, backend storage.Backend, p string) error {
	info, err := backend.Stat(r.ctx, p)
	if err != nil {
		return &models.ComparisonError{
			Kind:    models.FilesystemKind(err),
			Paths:   []string{p},
			Message: fmt.Sprintf("Failed to access file %q: %v", p, err),
			Err:     err,
		}
	}
	if info.IsDir() {
		return models.NewComparisonError(models.KindNotAFile,
			fmt.Sprintf("Expected %q to be a file, but it's a directory", p), p)
	}
	return nil
}
