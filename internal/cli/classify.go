package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/dirsnap/pkg/classify"
	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

// NewClassifyCommand creates the classify command
func NewClassifyCommand(global *GlobalFlags) *cobra.Command {
	var noDigest bool

	cmd := &cobra.Command{
		Use:   "classify FILE...",
		Short: "Show how files would be compared",
		Long: `Report, for each file, whether it is treated as binary, its size,
whether it would be streamed, and its SHA-256 digest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, global, args, !noDigest)
		},
	}

	cmd.Flags().BoolVar(&noDigest, "no-digest", false, "skip SHA-256 computation")

	return cmd
}

func runClassify(cmd *cobra.Command, global *GlobalFlags, args []string, withDigest bool) error {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := resolvePath("file", arg)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}

	r, err := newRun(cmd, global, "classify")
	if err != nil {
		return err
	}

	backend := storage.NewLocal()
	classifier := classify.New(backend, classifyOptions(r.cfg), r.logger)

	for _, p := range paths {
		if err := requireFile(r, backend, p); err != nil {
			r.fail(err)
			return r.finish()
		}

		c, err := classifier.Classify(r.ctx, p)
		if err != nil {
			r.fail(err)
			return r.finish()
		}

		if withDigest {
			if c.ShouldStream {
				c.Digest, err = classifier.DigestStream(r.ctx, p)
			} else {
				c.Digest, err = classifier.Digest(r.ctx, p)
			}
			if err != nil {
				r.fail(err)
				return r.finish()
			}
		}

		r.logger.Debug(r.ctx, "classified file", logging.Fields{
			"path":      p,
			"binary":    c.IsBinary,
			"size":      c.Size,
			"streaming": c.ShouldStream,
		})
		r.report.Files = append(r.report.Files, *c)
	}
	return r.finish()
}
