package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirsnap/pkg/snapshot"
)

type idFlags struct {
	TestPath string
	TestName string
}

// NewIDCommand creates the id command
func NewIDCommand(global *GlobalFlags) *cobra.Command {
	var flags idFlags

	cmd := &cobra.Command{
		Use:   "id",
		Short: "Print the snapshot location for a test",
		Long: `Print the snapshot identifier and directory that a test would use.

The identifier is the SHA-256 of "<test path>/<test name>" and the snapshot
lives in <dir of test path>/<snapshot.dir_name>/<identifier>.`,
		Example: `  dirsnap id --test-path ./pkg/gen/gen_test.go --test-name TestGenerate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runID(cmd, global, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.TestPath, "test-path", "", "path of the test file (required)")
	cmd.Flags().StringVar(&flags.TestName, "test-name", "", "name of the test (required)")

	cmd.MarkFlagRequired("test-path")
	cmd.MarkFlagRequired("test-name")

	return cmd
}

func runID(cmd *cobra.Command, global *GlobalFlags, flags *idFlags) error {
	if flags.TestName == "" {
		return fmt.Errorf("--test-name is required")
	}
	testPath, err := resolvePath("test-path", flags.TestPath)
	if err != nil {
		return err
	}

	r, err := newRun(cmd, global, "id")
	if err != nil {
		return err
	}

	id := snapshot.ID(testPath, flags.TestName)
	r.report.SnapshotID = id
	r.report.Snapshot = snapshot.PathIn(testPath, r.cfg.Snapshot.DirName, id)
	return r.finish()
}
