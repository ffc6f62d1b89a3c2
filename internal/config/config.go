package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Source selects the page retrieval strategy.
type Source string

// Supported page sources.
const (
	// SourceAPI uses the vendor's JSON product-list endpoint.
	// It provides pagination metadata (total page count) and the full
	// category hierarchy plus per-product parameter lists.
	SourceAPI Source = "api"

	// SourceHTML fetches rendered category pages and extracts records
	// from the flattened page text with a pattern. It provides no
	// pagination metadata, so termination is inferred from empty pages.
	SourceHTML Source = "html"
)

// Scope selects the boundary within which the deduplication key must
// stay unique.
type Scope string

// Supported deduplication scopes.
const (
	// ScopeCategory deduplicates within each category independently.
	// The same physical part may appear once per matching category's
	// output table. This matches the one-table-per-category sink.
	ScopeCategory Scope = "category"

	// ScopeRun deduplicates across the whole run: a part is emitted
	// only in the first category it appears in.
	ScopeRun Scope = "run"
)

// Default configuration values.
// These mirror the behavior of the original harvester where applicable.
const (
	// DefaultTimeout bounds each individual network call. The vendor
	// site is occasionally slow; 20 seconds avoids false soft-failures
	// without letting a dead connection stall a run for long.
	DefaultTimeout = 20 * time.Second

	// DefaultDelay is the politeness delay between consecutive page
	// fetches within a category. Detail-page fallback fetches are paced
	// with the same delay.
	DefaultDelay = 1 * time.Second

	// DefaultPageSize is the number of items requested per structured
	// API page. The vendor endpoint treats 25 as its canonical page
	// size; other values are not reliably honored.
	DefaultPageSize = 25

	// DefaultUserAgent is a browser-like User-Agent. The vendor site
	// serves an empty shell to clients it does not recognize as
	// browsers, so a desktop Chrome string is used for all requests.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	// DefaultProductListAPI is the structured product-list endpoint.
	DefaultProductListAPI = "https://wmsc.lcsc.com/ftps/wm/product/query/list"

	// DefaultCategoryIndexURL is the page where category links are
	// discovered.
	DefaultCategoryIndexURL = "https://www.lcsc.com/products"

	// DefaultSiteBaseURL is the base for resolving relative category
	// links and building product detail URLs.
	DefaultSiteBaseURL = "https://www.lcsc.com"

	// AppName is the application name used for XDG directory paths.
	AppName = "lcscharvest"
)

// Config holds all configuration options for the harvester.
// This struct is populated from defaults, the optional config file, and
// CLI flags, then passed through the application via dependency injection.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ExportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// Source selects the extraction strategy: SourceAPI or SourceHTML.
	Source Source

	// Scope selects the deduplication boundary: ScopeCategory or ScopeRun.
	Scope Scope

	// MaxPages caps the number of pages fetched per category.
	// 0 or negative means no cap; use all pages reported by the API.
	// With the HTML source there is no reported total, so 0 means
	// "extend while new records keep appearing".
	MaxPages int

	// IDStart and IDEnd filter discovered categories to an inclusive id
	// range. Both zero means no filter.
	IDStart int
	IDEnd   int

	// Timeout bounds each individual HTTP request. Exceeding it is a
	// soft failure: the page yields nothing and the harvest continues.
	Timeout time.Duration

	// Delay is the politeness delay between consecutive page fetches
	// within a category. Never applied after the last page.
	Delay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// ProductListAPI is the structured query endpoint URL.
	ProductListAPI string

	// CategoryIndexURL is the category discovery page URL.
	CategoryIndexURL string

	// SiteBaseURL is the base URL for relative links and detail pages.
	SiteBaseURL string

	// Targets holds explicit category URLs to harvest. When empty,
	// categories are discovered from CategoryIndexURL instead.
	Targets []string

	// OutputDir is the directory exported CSV tables are written to.
	OutputDir string

	// ReportFile is the path a Markdown or JSON report is written to.
	// Empty means stdout.
	ReportFile string

	// MarkdownReport and JSONReport select the export format.
	// When neither is set, tables are written as CSV files.
	// Mutually exclusive.
	MarkdownReport bool
	JSONReport     bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// DBDir is the directory for the SQLite harvest database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist harvest runs to the database.
	SaveToDB bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .lcscharvest in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// Overrides holds per-category configuration loaded from the config
	// file. Nil when no config file is in use.
	Overrides *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, endpoints).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Source:           SourceAPI,
		Scope:            ScopeCategory,
		Timeout:          DefaultTimeout,
		Delay:            DefaultDelay,
		UserAgent:        DefaultUserAgent,
		ProductListAPI:   DefaultProductListAPI,
		CategoryIndexURL: DefaultCategoryIndexURL,
		SiteBaseURL:      DefaultSiteBaseURL,
		SaveToDB:         true,
	}
}

// XDGDataDir returns the XDG data directory for the harvester.
// On Linux: ~/.local/share/lcscharvest
// On macOS: ~/Library/Application Support/lcscharvest
// On Windows: %LOCALAPPDATA%\lcscharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Source != SourceAPI && c.Source != SourceHTML {
		return ErrInvalidSource
	}
	if c.Scope != ScopeCategory && c.Scope != ScopeRun {
		return ErrInvalidScope
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.IDStart < 0 || c.IDEnd < 0 {
		return ErrInvalidIDRange
	}
	// A reversed range would silently exclude everything.
	if c.IDStart > 0 && c.IDEnd > 0 && c.IDStart > c.IDEnd {
		return ErrInvalidIDRange
	}
	if c.MarkdownReport && c.JSONReport {
		return ErrConflictingFormats
	}
	return nil
}

// CategoryMaxPages returns the effective page cap for the given category
// id, taking per-category overrides from the config file into account.
func (c *Config) CategoryMaxPages(id int) int {
	if c.Overrides != nil {
		if o, ok := c.Overrides.Categories[id]; ok && o.MaxPages != 0 {
			return o.MaxPages
		}
	}
	return c.MaxPages
}

// CategorySource returns the extraction strategy for the given category
// id, taking per-category overrides from the config file into account.
func (c *Config) CategorySource(id int) Source {
	if c.Overrides != nil {
		if o, ok := c.Overrides.Categories[id]; ok && o.Source != "" {
			return o.Source
		}
	}
	return c.Source
}
