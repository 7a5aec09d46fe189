package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/dirsnap/pkg/compare"
	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

type compareFlags struct {
	Live     string
	Snapshot string
	Exclude  []string
}

// NewCompareCommand creates the compare command
func NewCompareCommand(global *GlobalFlags) *cobra.Command {
	var flags compareFlags

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a directory against its snapshot",
		Long: `Compare a live directory tree against a stored snapshot.

Every entry of the live tree must exist in the snapshot with the same type,
and every file must have the same content. The first difference is reported:
small text files get a line diff, binary and large files are compared by
SHA-256 digest. Entries that exist only in the snapshot are not reported.

Exit status is 0 when the trees match, 1 on a difference and 2 on errors.`,
		Example: `  dirsnap compare --live ./out --snapshot ./__dir_snapshots__/abc123
  dirsnap compare --live ./out --snapshot ./golden --exclude '*.log' --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, global, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Live, "live", "l", "", "live directory (required)")
	cmd.Flags().StringVarP(&flags.Snapshot, "snapshot", "s", "", "snapshot directory (required)")
	cmd.Flags().StringArrayVarP(&flags.Exclude, "exclude", "e", nil, "exclude pattern (repeatable, doublestar syntax)")

	cmd.MarkFlagRequired("live")
	cmd.MarkFlagRequired("snapshot")

	return cmd
}

func runCompare(cmd *cobra.Command, global *GlobalFlags, flags *compareFlags) error {
	live, snapshot, err := validateTreePaths(flags.Live, flags.Snapshot)
	if err != nil {
		return err
	}

	r, err := newRun(cmd, global, "compare")
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

	opts := compareOptions(r.cfg, exclude)
	opts.Logger = r.logger

	backend := storage.NewLocal()
	comparator := compare.NewTreeComparator(backend, backend, opts)

	r.logger.Info(r.ctx, "comparing trees", logging.Fields{
		"live":     live,
		"snapshot": snapshot,
		"exclude":  exclude.String(),
	})
	if err := comparator.Compare(r.ctx, live, snapshot); err != nil {
		r.fail(err)
	}
	return r.finish()
}
