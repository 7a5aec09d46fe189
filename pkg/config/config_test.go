package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dirsnap/pkg/models"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "__dir_snapshots__", cfg.Snapshot.DirName)
	assert.Equal(t, 8192, cfg.Compare.BinaryCheckSize)
	assert.Equal(t, int64(10*1024*1024), cfg.Compare.StreamingThreshold)
	assert.Equal(t, 3, cfg.Compare.ContextLines)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"snapshot.dir_name", func(c *Config) { c.Snapshot.DirName = "" }},
		{"snapshot.dir_name", func(c *Config) { c.Snapshot.DirName = "a/b" }},
		{"snapshot.placeholder", func(c *Config) { c.Snapshot.Placeholder = "x/.keep" }},
		{"compare.binary_check_size", func(c *Config) { c.Compare.BinaryCheckSize = 0 }},
		{"compare.streaming_threshold", func(c *Config) { c.Compare.StreamingThreshold = 0 }},
		{"compare.context_lines", func(c *Config) { c.Compare.ContextLines = -1 }},
		{"compare.buffer_size", func(c *Config) { c.Compare.BufferSize = 512 }},
		{"compare.exclude", func(c *Config) { c.Compare.Exclude = []string{"[bad"} }},
		{"output.format", func(c *Config) { c.Output.Format = "xml" }},
		{"output.color", func(c *Config) { c.Output.Color = "sometimes" }},
		{"logging.format", func(c *Config) { c.Logging.Format = "xml" }},
		{"logging.level", func(c *Config) { c.Logging.Level = "trace" }},
		{"logging.max_size", func(c *Config) { c.Logging.MaxBackups = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("empty placeholder allowed", func(t *testing.T) {
		cfg := Default()
		cfg.Snapshot.Placeholder = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Compare.Exclude = []string{"*.log", "node_modules/"}
	cfg.Compare.ContextLines = 5
	cfg.Output.Format = "json"
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveToFile_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "xml"
	err := SaveToFile(cfg, filepath.Join(t.TempDir(), "config.yaml"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoadFromFile_PartialOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compare:\n  context_lines: 1\nlogging:\n  level: debug\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Compare.ContextLines)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8192, cfg.Compare.BinaryCheckSize)
	assert.Equal(t, "human", cfg.Output.Format)
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("compare: [\n"), 0644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("output:\n  format: xml\n"), 0644))
	_, err = LoadFromFile(invalid)
	assert.ErrorContains(t, err, "output.format")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	got, err := ExpandPath("~/logs/dirsnap.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "dirsnap.log"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)

	t.Run("LogFileExpandedOnLoad", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  file: ~/dirsnap.log\n"), 0644))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "dirsnap.log"), cfg.Logging.File)
	})
}

func TestLoadDefault(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(configHome, "none"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	assert.Equal(t, filepath.Join(configHome, "dirsnap", "config.yaml"), DefaultConfigPath())

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	custom := Default()
	custom.Snapshot.UpdateHint = "Run make snapshots"
	require.NoError(t, SaveToFile(custom, DefaultConfigPath()))

	cfg, err = LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "Run make snapshots", cfg.Snapshot.UpdateHint)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, custom, cfg)

	_, err = Load(filepath.Join(configHome, "absent.yaml"))
	assert.ErrorContains(t, err, "not found")
}
