package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/output"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

type updateFlags struct {
	Live     string
	Snapshot string
	Exclude  []string
}

// NewUpdateCommand creates the update command
func NewUpdateCommand(global *GlobalFlags) *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a snapshot with the current directory",
		Long: `Replace the snapshot directory with a fresh copy of the live directory.

The previous snapshot is removed first. Empty directories receive a
placeholder file (snapshot.placeholder, ".gitkeep" by default) so that
version control keeps them. Concurrent updates of the same snapshot are
serialised with a lock file next to it.`,
		Example: `  dirsnap update --live ./out --snapshot ./__dir_snapshots__/abc123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, global, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Live, "live", "l", "", "live directory (required)")
	cmd.Flags().StringVarP(&flags.Snapshot, "snapshot", "s", "", "snapshot directory (required)")
	cmd.Flags().StringArrayVarP(&flags.Exclude, "exclude", "e", nil, "exclude pattern (repeatable, doublestar syntax)")

	cmd.MarkFlagRequired("live")
	cmd.MarkFlagRequired("snapshot")

	return cmd
}

func runUpdate(cmd *cobra.Command, global *GlobalFlags, flags *updateFlags) error {
	live, snapshot, err := validateTreePaths(flags.Live, flags.Snapshot)
	if err != nil {
		return err
	}

	r, err := newRun(cmd, global, "update")
	if err != nil {
		return err
	}
	r.report.Live = live
	r.report.Snapshot = snapshot

	exclude, err := excludeMatcher(r.cfg, flags.Exclude)
	if err != nil {
		r.fail(err)
		return r.finish()
	}

	lock, err := storage.Lock(r.ctx, snapshot, storage.DefaultLockRetry)
	if err != nil {
		r.fail(err)
		return r.finish()
	}
	defer lock.Unlock()

	opts := storage.CopyOptions{
		Placeholder: r.cfg.Snapshot.Placeholder,
		Exclude:     exclude,
	}

	var bar *output.CopyProgress
	if r.cfg.Output.Progress && r.formatter.Name() == "human" {
		if _, total, err := storage.Usage(r.ctx, storage.NewLocal(), live, exclude); err == nil {
			bar = output.NewCopyProgress(r.errOut, total)
		}
	}
	opts.Progress = func(relPath string, stats storage.CopyStats) {
		update := output.ProgressUpdate{
			FilePath:     relPath,
			FilesCopied:  stats.Files,
			BytesWritten: stats.Bytes,
		}
		if bar != nil {
			bar.Update(update)
			return
		}
		if r.formatter.Name() == "json" {
			r.formatter.Progress(update)
		}
	}

	r.logger.Info(r.ctx, "updating snapshot", logging.Fields{
		"live":     live,
		"snapshot": snapshot,
		"lock":     lock.Path(),
	})

	backend := storage.NewLocal()
	stats, err := storage.ReplaceTree(r.ctx, backend, live, backend, snapshot, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		r.fail(err)
		return r.finish()
	}

	r.logger.Debug(r.ctx, "snapshot written", logging.Fields{
		"files":        stats.Files,
		"directories":  stats.Directories,
		"symlinks":     stats.Symlinks,
		"placeholders": stats.Placeholders,
		"skipped":      stats.Skipped,
		"bytes":        stats.Bytes,
	})

	r.report.Status = models.StatusUpdated
	r.report.FilesCopied = stats.Files
	r.report.BytesCopied = stats.Bytes
	return r.finish()
}
