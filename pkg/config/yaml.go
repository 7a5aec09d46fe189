package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// configRelPath is the config file location relative to the XDG config dirs
const configRelPath = "dirsnap/config.yaml"

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Logging.File, err = ExpandPath(cfg.Logging.File); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/dirsnap/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, filepath.FromSlash(configRelPath))
}

// LoadDefault loads the first config file found in the XDG config
// directories. If there is none, it returns the default configuration.
func LoadDefault() (*Config, error) {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// Load reads path when it is set and falls back to LoadDefault otherwise
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadDefault()
	}
	cfg, err := LoadFromFile(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found: %w", path, err)
	}
	return cfg, err
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}
