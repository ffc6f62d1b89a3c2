package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/harvestkit/lcscharvest/internal/catalog"
	"github.com/harvestkit/lcscharvest/internal/config"
	"github.com/harvestkit/lcscharvest/internal/database"
	"github.com/harvestkit/lcscharvest/internal/export"
	"github.com/harvestkit/lcscharvest/internal/harvest"
	"github.com/harvestkit/lcscharvest/internal/log"
	"github.com/harvestkit/lcscharvest/internal/model"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest [category-url...]",
		Short: "Harvest product records from the catalog",
		Long: `Harvest collects product records category by category.

Without arguments, categories are discovered from the catalog index page.
Category page URLs can also be passed explicitly as arguments.

Examples:
  # Harvest every discoverable category
  lcscharvest harvest

  # Harvest a catalog id range, five pages per category
  lcscharvest harvest --id-start 300 --id-end 400 --max-pages 5

  # Harvest one category explicitly
  lcscharvest harvest https://www.lcsc.com/products/category/874.html

  # Use the text-pattern fallback and a longer delay
  lcscharvest harvest --source html --delay 3s

  # Emit a Markdown report instead of CSV tables
  lcscharvest harvest --markdown --output report.md

Configuration file (.lcscharvest) example:
  defaults:
    delay: 2s
    maxPages: 10
  categories:
    874:
      maxPages: -1   # no cap for this category
    308:
      source: html`,
		Args: cobra.ArbitraryArgs,
		RunE: runHarvestCmd,
	}

	// Harvest behavior flags
	cmd.Flags().StringP("source", "s", string(config.SourceAPI),
		"Extraction strategy: api (structured endpoint) or html (text pattern)")
	cmd.Flags().String("scope", string(config.ScopeCategory),
		"Deduplication scope: category or run")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum pages per category (0 = no cap)")
	cmd.Flags().Int("id-start", 0,
		"Lowest catalog id to harvest (0 = unbounded)")
	cmd.Flags().Int("id-end", 0,
		"Highest catalog id to harvest (0 = unbounded)")
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay,
		"Politeness delay between page fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .lcscharvest in current or home directory)")

	// Output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Report file path for --json/--markdown (default: stdout)")
	cmd.Flags().String("output-dir", "lcsc-export",
		"Directory for CSV table files (default format)")
	cmd.Flags().Bool("no-db", false,
		"Do not persist the run to the local database")
	cmd.Flags().String("db-dir", "",
		"Directory for the harvest database (default: XDG data directory)")

	return cmd
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runHarvest(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	source, err := cmd.Flags().GetString("source")
	if err != nil {
		return nil, err
	}
	cfg.Source = config.Source(source)

	scope, err := cmd.Flags().GetString("scope")
	if err != nil {
		return nil, err
	}
	cfg.Scope = config.Scope(scope)

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.IDStart, err = cmd.Flags().GetInt("id-start")
	if err != nil {
		return nil, err
	}

	cfg.IDEnd, err = cmd.Flags().GetInt("id-end")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the config file before re-applying the flags the user set
	// explicitly, so flags win over file-level defaults.
	// If user explicitly specified a config file path, error if not found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
		applyExplicitFlags(cmd, cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	// Positional arguments are explicit category page URLs.
	cfg.Targets = args

	return cfg, nil
}

// applyExplicitFlags re-applies flags the user set on the command line,
// so they override config file defaults.
func applyExplicitFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("source") {
		v, _ := cmd.Flags().GetString("source")
		cfg.Source = config.Source(v)
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages, _ = cmd.Flags().GetInt("max-pages")
	}
	if cmd.Flags().Changed("delay") {
		cfg.Delay, _ = cmd.Flags().GetDuration("delay")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
}

// runHarvest executes the harvest.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting harvest",
		"source", cfg.Source,
		"scope", cfg.Scope,
		"maxPages", cfg.MaxPages,
		"delay", cfg.Delay,
		"saveToDB", cfg.SaveToDB,
	)

	client := catalog.NewClient(cfg.Timeout, cfg.UserAgent)

	categories, err := resolveCategories(ctx, cfg, client, logger)
	if err != nil {
		return err
	}

	apiSource := catalog.NewStructuredSource(client, cfg.ProductListAPI,
		catalog.WithStructuredLogger(logger))
	htmlSource := catalog.NewTextSource(client,
		catalog.WithTextLogger(logger))

	var defaultSource catalog.PageSource = apiSource
	if cfg.Source == config.SourceHTML {
		defaultSource = htmlSource
	}

	resolver := catalog.NewDescriptionResolver(client, cfg.SiteBaseURL,
		catalog.WithResolverDelay(cfg.Delay),
		catalog.WithResolverLogger(logger))

	harvester := harvest.New(defaultSource, harvest.NewAggregator(cfg.Scope),
		harvest.WithDelay(cfg.Delay),
		harvest.WithResolver(resolver),
		harvest.WithPageCap(cfg.CategoryMaxPages),
		harvest.WithSourceOverride(func(id int) catalog.PageSource {
			switch src := cfg.CategorySource(id); {
			case src == cfg.Source:
				return nil
			case src == config.SourceHTML:
				return htmlSource
			default:
				return apiSource
			}
		}),
		harvest.WithLogger(logger))

	run, err := harvester.Run(ctx, categories)
	if err != nil {
		return err
	}

	logger.Info("harvest finished",
		"categories", len(run.Categories),
		"skipped", run.Skipped,
		"records", run.TotalRecords(),
	)

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg, run, logger); err != nil {
			return err
		}
	}

	return writeResults(cfg, run)
}

// resolveCategories turns explicit target URLs into categories, or
// discovers them from the index page when no targets were given.
func resolveCategories(ctx context.Context, cfg *config.Config, client *resty.Client, logger *slog.Logger) ([]model.Category, error) {
	if len(cfg.Targets) > 0 {
		categories := make([]model.Category, 0, len(cfg.Targets))
		for _, target := range cfg.Targets {
			id, err := catalog.ParseCategoryID(target)
			if err != nil {
				// An unusable target is a per-category condition,
				// never a run abort.
				logger.Warn("skipping target without catalog id", "url", target)
				continue
			}
			categories = append(categories, model.Category{
				ID:   id,
				URL:  target,
				Name: fmt.Sprintf("category_%d", id),
			})
		}
		return categories, nil
	}

	discoverer := catalog.NewDiscoverer(client, cfg.CategoryIndexURL, cfg.SiteBaseURL,
		catalog.WithIDRange(cfg.IDStart, cfg.IDEnd),
		catalog.WithDiscovererLogger(logger))
	return discoverer.Discover(ctx)
}

// saveRun persists the run to the local database.
func saveRun(ctx context.Context, cfg *config.Config, run *model.RunResult, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, run, string(cfg.Source), string(cfg.Scope))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved", "runID", runID, "dir", cfg.DBDir)
	return nil
}

// writeResults renders the run in the configured format.
func writeResults(cfg *config.Config, run *model.RunResult) error {
	switch {
	case cfg.MarkdownReport:
		return writeReport(cfg.ReportFile, run, func(w io.Writer) export.Writer {
			return export.NewMarkdownWriter(w)
		})
	case cfg.JSONReport:
		return writeReport(cfg.ReportFile, run, func(w io.Writer) export.Writer {
			return export.NewJSONWriter(w, export.WithPrettyPrint())
		})
	default:
		_, err := export.NewCSVWriter(cfg.OutputDir).Write(run)
		return err
	}
}

// writeReport writes a single-document report to the given path, or to
// stdout when the path is empty.
func writeReport(path string, run *model.RunResult, newWriter func(io.Writer) export.Writer) error {
	out := io.Writer(os.Stdout)
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	_, err := newWriter(out).Write(run)
	return err
}
