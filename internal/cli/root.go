package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the dirsnap command tree
func NewRootCommand() *cobra.Command {
	var global GlobalFlags

	rootCmd := &cobra.Command{
		Use:   "dirsnap",
		Short: "Directory snapshot testing",
		Long: `dirsnap compares a generated directory tree against a stored snapshot
and reports the first difference: a missing entry, a file where a directory
was expected, or changed content shown as a line diff.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd, &global)

	rootCmd.AddCommand(NewCompareCommand(&global))
	rootCmd.AddCommand(NewUpdateCommand(&global))
	rootCmd.AddCommand(NewDiffCommand(&global))
	rootCmd.AddCommand(NewClassifyCommand(&global))
	rootCmd.AddCommand(NewIDCommand(&global))
	rootCmd.AddCommand(NewConfigCommand(&global))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
