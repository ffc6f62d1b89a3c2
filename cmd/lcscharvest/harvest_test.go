package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harvestkit/lcscharvest/internal/config"
	"github.com/harvestkit/lcscharvest/internal/model"
)

// TestNewHarvestCmd tests the harvest command creation.
func TestNewHarvestCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHarvestCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "harvest [category-url...]" {
			t.Errorf("expected use 'harvest [category-url...]', got %q", cmd.Use)
		}
	})

	t.Run("has source flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("source")
		if flag == nil {
			t.Fatal("expected source flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
		if flag.DefValue != "api" {
			t.Errorf("expected default 'api', got %q", flag.DefValue)
		}
	})

	t.Run("has scope flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("scope")
		if flag == nil {
			t.Fatal("expected scope flag")
		}
		if flag.DefValue != "category" {
			t.Errorf("expected default 'category', got %q", flag.DefValue)
		}
	})

	t.Run("has delay flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("delay")
		if flag == nil {
			t.Fatal("expected delay flag")
		}
		if flag.DefValue != config.DefaultDelay.String() {
			t.Errorf("expected default %q, got %q", config.DefaultDelay, flag.DefValue)
		}
	})

	t.Run("has output flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output", "output-dir", "no-db"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestBuildConfig tests flag-to-config mapping.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewHarvestCmd()
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Source != config.SourceAPI {
			t.Errorf("expected api source, got %q", cfg.Source)
		}
		if cfg.Scope != config.ScopeCategory {
			t.Errorf("expected category scope, got %q", cfg.Scope)
		}
		if cfg.Delay != config.DefaultDelay {
			t.Errorf("expected default delay, got %v", cfg.Delay)
		}
		if !cfg.SaveToDB {
			t.Error("expected database persistence on by default")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid default config: %v", err)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewHarvestCmd()
		if err := cmd.Flags().Parse([]string{
			"--source", "html",
			"--scope", "run",
			"--max-pages", "5",
			"--delay", "2s",
			"--no-db",
		}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://www.lcsc.com/products/category/874.html"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Source != config.SourceHTML {
			t.Errorf("expected html source, got %q", cfg.Source)
		}
		if cfg.Scope != config.ScopeRun {
			t.Errorf("expected run scope, got %q", cfg.Scope)
		}
		if cfg.MaxPages != 5 {
			t.Errorf("expected max pages 5, got %d", cfg.MaxPages)
		}
		if cfg.Delay != 2*time.Second {
			t.Errorf("expected 2s delay, got %v", cfg.Delay)
		}
		if cfg.SaveToDB {
			t.Error("expected --no-db to disable persistence")
		}
		if len(cfg.Targets) != 1 {
			t.Errorf("expected 1 target, got %d", len(cfg.Targets))
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewHarvestCmd()
		if err := cmd.Flags().Parse([]string{"--config", "/nonexistent/config.yaml"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd, nil); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("config file defaults lose to explicit flags", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "defaults:\n  delay: 5s\n  maxPages: 9\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewHarvestCmd()
		if err := cmd.Flags().Parse([]string{"--config", path, "--delay", "2s"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// The flag wins over the file; the file wins over the default.
		if cfg.Delay != 2*time.Second {
			t.Errorf("expected flag delay 2s, got %v", cfg.Delay)
		}
		if cfg.MaxPages != 9 {
			t.Errorf("expected file maxPages 9, got %d", cfg.MaxPages)
		}
	})
}

// TestWriteResults tests format selection.
func TestWriteResults(t *testing.T) {
	t.Parallel()

	run := &model.RunResult{
		Categories: []model.CategoryResult{
			{
				Category: model.Category{ID: 874, Name: "MOSFETs"},
				Records: []model.Record{
					{MPN: "AO3400A", LCSCCode: "C20917", Manufacturer: "AOS", Page: 1},
				},
			},
		},
	}

	t.Run("default writes CSV tables", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.OutputDir = filepath.Join(t.TempDir(), "out")

		if err := writeResults(cfg, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, "MOSFETs.csv")); err != nil {
			t.Errorf("expected CSV table file: %v", err)
		}
	})

	t.Run("markdown report to file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.MarkdownReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "run.md")

		if err := writeResults(cfg, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(data), "# LCSC Harvest Report") {
			t.Error("expected Markdown heading in report")
		}
	})

	t.Run("json report round trips", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "run.json")

		if err := writeResults(cfg, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		var got model.RunResult
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("report is not valid JSON: %v", err)
		}
		if got.TotalRecords() != 1 {
			t.Errorf("expected 1 record after round trip, got %d", got.TotalRecords())
		}
	})
}
