package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sdejongh/dirsnap/pkg/classify"
	"github.com/sdejongh/dirsnap/pkg/compare"
	"github.com/sdejongh/dirsnap/pkg/config"
	"github.com/sdejongh/dirsnap/pkg/diff"
	"github.com/sdejongh/dirsnap/pkg/pathsafe"
)

// resolvePath makes a command-line path absolute and validates it
func resolvePath(flag, p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("--%s is required", flag)
	}
	expanded, err := config.ExpandPath(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s path: %w", flag, err)
	}
	return pathsafe.ValidatePath(abs, "")
}

// validateTreePaths resolves the live and snapshot directories and
// rejects identical or nested pairs
func validateTreePaths(live, snapshot string) (string, string, error) {
	liveAbs, err := resolvePath("live", live)
	if err != nil {
		return "", "", err
	}
	snapAbs, err := resolvePath("snapshot", snapshot)
	if err != nil {
		return "", "", err
	}

	if liveAbs == snapAbs {
		return "", "", fmt.Errorf("live and snapshot cannot be the same: %s", liveAbs)
	}
	if strings.HasPrefix(snapAbs, liveAbs+string(filepath.Separator)) {
		return "", "", fmt.Errorf("snapshot cannot be inside live directory")
	}
	if strings.HasPrefix(liveAbs, snapAbs+string(filepath.Separator)) {
		return "", "", fmt.Errorf("live directory cannot be inside snapshot")
	}
	return liveAbs, snapAbs, nil
}

// loadConfig loads configuration from file or defaults
func loadConfig(flags *GlobalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config, flags *GlobalFlags) error {
	if flags.Output != "" {
		cfg.Output.Format = flags.Output
	}
	if flags.Color != "" {
		cfg.Output.Color = flags.Color
	}
	if flags.Quiet {
		cfg.Output.Quiet = true
		cfg.Output.Progress = false
	}
	if flags.LogFile != "" {
		path, err := config.ExpandPath(flags.LogFile)
		if err != nil {
			return err
		}
		cfg.Logging.Enabled = true
		cfg.Logging.File = path
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(flags.LogLevel)
	}
	if flags.Verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}
	return cfg.Validate()
}

// classifyOptions maps the compare section onto classifier options
func classifyOptions(cfg *config.Config) classify.Options {
	return classify.Options{
		BinaryCheckSize:    cfg.Compare.BinaryCheckSize,
		StreamingThreshold: cfg.Compare.StreamingThreshold,
		BufferSize:         cfg.Compare.BufferSize,
	}
}

// excludeMatcher merges configured and command-line exclude patterns
func excludeMatcher(cfg *config.Config, extra []string) (*pathsafe.Matcher, error) {
	patterns := append(append([]string{}, cfg.Compare.Exclude...), extra...)
	return pathsafe.NewMatcher(patterns)
}

// compareOptions builds tree comparison options from the configuration
func compareOptions(cfg *config.Config, exclude *pathsafe.Matcher) compare.Options {
	return compare.Options{
		Classify:   classifyOptions(cfg),
		Renderer:   &diff.Renderer{ContextLines: cfg.Compare.ContextLines},
		Exclude:    exclude,
		UpdateHint: cfg.Snapshot.UpdateHint,
	}
}
