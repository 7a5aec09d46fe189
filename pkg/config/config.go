// Package config loads and validates dirsnap's YAML configuration.
package config

import (
	"path/filepath"

	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/pathsafe"
)

// Config represents the application configuration
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Compare  CompareConfig  `yaml:"compare"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SnapshotConfig holds snapshot layout settings
type SnapshotConfig struct {
	DirName     string `yaml:"dir_name"`    // directory next to the test file
	Placeholder string `yaml:"placeholder"` // file written into empty directories ("" = none)
	UpdateHint  string `yaml:"update_hint"` // remedy quoted in mismatch messages
}

// CompareConfig holds comparison thresholds
type CompareConfig struct {
	BinaryCheckSize    int      `yaml:"binary_check_size"`
	StreamingThreshold int64    `yaml:"streaming_threshold"`
	ContextLines       int      `yaml:"context_lines"`
	BufferSize         int      `yaml:"buffer_size"`
	Exclude            []string `yaml:"exclude,omitempty"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Color    string `yaml:"color"`    // "auto", "always" or "never"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	File       string `yaml:"file"`   // Log file path (empty = stderr)
	MaxSize    int64  `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			DirName:     "__dir_snapshots__",
			Placeholder: ".gitkeep",
			UpdateHint:  "Run dirsnap update",
		},
		Compare: CompareConfig{
			BinaryCheckSize:    8192,
			StreamingThreshold: 10 * 1024 * 1024,
			ContextLines:       3,
			BufferSize:         65536,
		},
		Output: OutputConfig{
			Format:   "human",
			Color:    "auto",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Format:     "text",
			Level:      "info",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Snapshot.DirName == "" || filepath.Base(c.Snapshot.DirName) != c.Snapshot.DirName {
		return &models.ValidationError{
			Field:   "snapshot.dir_name",
			Message: "must be a single path element",
		}
	}

	if c.Snapshot.Placeholder != "" && filepath.Base(c.Snapshot.Placeholder) != c.Snapshot.Placeholder {
		return &models.ValidationError{
			Field:   "snapshot.placeholder",
			Message: "must be a file name",
		}
	}

	if c.Compare.BinaryCheckSize < 1 {
		return &models.ValidationError{
			Field:   "compare.binary_check_size",
			Message: "must be at least 1",
		}
	}

	if c.Compare.StreamingThreshold < 1 {
		return &models.ValidationError{
			Field:   "compare.streaming_threshold",
			Message: "must be at least 1 byte",
		}
	}

	if c.Compare.ContextLines < 0 {
		return &models.ValidationError{
			Field:   "compare.context_lines",
			Message: "must not be negative",
		}
	}

	if c.Compare.BufferSize < 4096 {
		return &models.ValidationError{
			Field:   "compare.buffer_size",
			Message: "must be at least 4096 bytes",
		}
	}

	if _, err := pathsafe.NewMatcher(c.Compare.Exclude); err != nil {
		return &models.ValidationError{
			Field:   "compare.exclude",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[c.Output.Color] {
		return &models.ValidationError{
			Field:   "output.color",
			Message: "must be 'auto', 'always', or 'never'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "rotation limits must not be negative",
		}
	}

	return nil
}
