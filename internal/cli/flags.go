package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool

	Output string
	Color  string

	LogFile   string
	LogFormat string
	LogLevel  string
}

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVar(
		&flags.ConfigFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/dirsnap/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&flags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output (debug log on stderr)",
	)
	cmd.PersistentFlags().BoolVarP(
		&flags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().StringVarP(
		&flags.Output,
		"output",
		"o",
		"",
		"output format: human, json (default from config)",
	)
	cmd.PersistentFlags().StringVar(
		&flags.Color,
		"color",
		"",
		"colour mode: auto, always, never (default from config)",
	)
	cmd.PersistentFlags().StringVar(
		&flags.LogFile,
		"log-file",
		"",
		"write logs to file (rotated by size)",
	)
	cmd.PersistentFlags().StringVar(
		&flags.LogFormat,
		"log-format",
		"",
		"log format: text, json (default from config)",
	)
	cmd.PersistentFlags().StringVar(
		&flags.LogLevel,
		"log-level",
		"",
		"log level: debug, info, warn, error (default from config)",
	)
}
