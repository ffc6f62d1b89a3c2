package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and category overrides", func(t *testing.T) {
		t.Parallel()

		content := `
defaults:
  delay: 500ms
  timeout: 30s
  maxPages: 10
  source: html
categories:
  874:
    maxPages: 2
  1201:
    source: api
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if cf.Defaults.Delay != 500*time.Millisecond {
			t.Errorf("expected delay 500ms, got %v", cf.Defaults.Delay)
		}
		if cf.Defaults.MaxPages != 10 {
			t.Errorf("expected maxPages 10, got %d", cf.Defaults.MaxPages)
		}
		if cf.Defaults.Source != SourceHTML {
			t.Errorf("expected source html, got %q", cf.Defaults.Source)
		}
		if got := cf.Categories[874].MaxPages; got != 2 {
			t.Errorf("expected category 874 maxPages 2, got %d", got)
		}
		if got := cf.Categories[1201].Source; got != SourceAPI {
			t.Errorf("expected category 1201 source api, got %q", got)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(":\n  - not yaml"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestFileApply tests applying file defaults onto a Config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cf := &File{
		Defaults: Defaults{
			Delay:    2 * time.Second,
			MaxPages: 3,
		},
	}

	cf.Apply(cfg)

	if cfg.Delay != 2*time.Second {
		t.Errorf("expected delay 2s, got %v", cfg.Delay)
	}
	if cfg.MaxPages != 3 {
		t.Errorf("expected maxPages 3, got %d", cfg.MaxPages)
	}
	// Unset fields keep their defaults.
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.Overrides != cf {
		t.Error("expected Overrides to point at the applied file")
	}
}
