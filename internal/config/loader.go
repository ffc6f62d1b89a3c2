package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".lcscharvest"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// CategoryConfig holds per-category overrides.
// This allows tuning harvest behavior for individual categories without
// changing the global settings.
type CategoryConfig struct {
	// MaxPages overrides the global page cap for this category.
	// A negative value means "no cap" even when a global cap is set.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Source overrides the global extraction strategy for this category.
	Source Source `yaml:"source,omitempty"`
}

// Defaults holds file-level defaults applied before CLI flags.
type Defaults struct {
	// Delay between page fetches, e.g. "1s", "500ms".
	Delay time.Duration `yaml:"delay,omitempty"`

	// Timeout per network request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxPages caps pages per category.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Source selects the extraction strategy.
	Source Source `yaml:"source,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .lcscharvest configuration file.
type File struct {
	// Defaults are applied to the config before CLI flags.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Categories maps catalog ids to their per-category overrides.
	Categories map[int]CategoryConfig `yaml:"categories,omitempty"`
}

// LoadConfigFile loads harvest configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether the
// config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	// Initialize Categories map if nil
	if cf.Categories == nil {
		cf.Categories = make(map[int]CategoryConfig)
	}

	return &cf, nil
}

// Apply copies the file-level defaults onto the config.
// Only non-zero values are applied, so CLI flags processed afterwards
// can still override everything.
func (cf *File) Apply(c *Config) {
	if cf.Defaults.Delay != 0 {
		c.Delay = cf.Defaults.Delay
	}
	if cf.Defaults.Timeout != 0 {
		c.Timeout = cf.Defaults.Timeout
	}
	if cf.Defaults.MaxPages != 0 {
		c.MaxPages = cf.Defaults.MaxPages
	}
	if cf.Defaults.Source != "" {
		c.Source = cf.Defaults.Source
	}
	if cf.Defaults.UserAgent != "" {
		c.UserAgent = cf.Defaults.UserAgent
	}
	c.Overrides = cf
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .lcscharvest in the current directory
// 3. Look for .lcscharvest in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
