package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/harvestkit/lcscharvest/internal/model"
)

// DBFileName is the SQLite file created under the data directory.
const DBFileName = "lcscharvest.db"

// HarvestDB provides SQLite-based storage for harvest runs.
//
// Design decision: All runs share a single database file rather than one
// file per run. Keeping history in one place makes cross-run queries
// (price-list drift, new parts per category) a plain SQL join.
type HarvestDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HarvestDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HarvestDB under dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HarvestDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HarvestDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HarvestDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HarvestDB) createTables() error {
	schema := `
	-- Runs store one row per harvest invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		source TEXT NOT NULL,
		scope TEXT NOT NULL,
		skipped INTEGER DEFAULT 0,
		total_records INTEGER DEFAULT 0
	);

	-- Category results store the per-category outcome of a run
	CREATE TABLE IF NOT EXISTS category_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		catalog_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		url TEXT,
		pages_fetched INTEGER DEFAULT 0,
		total_pages INTEGER DEFAULT 0,
		aborted INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_catres_run ON category_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_catres_catalog ON category_results(catalog_id);

	-- Records store the harvested parts
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_result_id INTEGER NOT NULL REFERENCES category_results(id),
		mpn TEXT NOT NULL,
		lcsc_code TEXT NOT NULL,
		manufacturer TEXT NOT NULL,
		description TEXT,
		category TEXT,
		subcategory TEXT,
		child_category TEXT,
		specs TEXT,
		page INTEGER DEFAULT 0,
		UNIQUE(category_result_id, mpn, lcsc_code)
	);

	CREATE INDEX IF NOT EXISTS idx_records_code ON records(lcsc_code);
	CREATE INDEX IF NOT EXISTS idx_records_mpn ON records(mpn);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists a whole run atomically and returns the new run id.
// source and scope record which strategies produced the data.
func (hdb *HarvestDB) SaveRun(ctx context.Context, run *model.RunResult, source, scope string) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, source, scope, skipped, total_records)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		source,
		scope,
		run.Skipped,
		run.TotalRecords(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, cr := range run.Categories {
		if err := saveCategoryResult(ctx, tx, runID, cr); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// saveCategoryResult inserts one category result and its records.
func saveCategoryResult(ctx context.Context, tx *sql.Tx, runID int64, cr model.CategoryResult) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO category_results (run_id, catalog_id, name, url, pages_fetched, total_pages, aborted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		cr.Category.ID,
		cr.Category.Name,
		cr.Category.URL,
		cr.PagesFetched,
		cr.TotalPages,
		boolToInt(cr.Aborted),
	)
	if err != nil {
		return fmt.Errorf("failed to insert category result: %w", err)
	}
	crID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read category result id: %w", err)
	}

	for _, rec := range cr.Records {
		specsJSON, err := json.Marshal(rec.Specs)
		if err != nil {
			return fmt.Errorf("failed to serialize specs: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (category_result_id, mpn, lcsc_code, manufacturer,
			                      description, category, subcategory, child_category, specs, page)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			crID,
			rec.MPN,
			rec.LCSCCode,
			rec.Manufacturer,
			rec.Description,
			rec.Category,
			rec.Subcategory,
			rec.ChildCategory,
			string(specsJSON),
			rec.Page,
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.LCSCCode, err)
		}
	}

	return nil
}

// RunSummary is one row of run history.
type RunSummary struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   time.Time
	Source       string
	Scope        string
	Skipped      int
	TotalRecords int
}

// RecentRuns returns up to limit run summaries, newest first.
func (hdb *HarvestDB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, source, scope, skipped, total_records
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var s RunSummary
		var started, finished string
		if err := rows.Scan(&s.ID, &started, &finished, &s.Source, &s.Scope, &s.Skipped, &s.TotalRecords); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.StartedAt = parseTimestamp(started)
		s.FinishedAt = parseTimestamp(finished)
		results = append(results, s)
	}

	return results, rows.Err()
}

// RecordsByRun returns the records of one run in insertion order.
func (hdb *HarvestDB) RecordsByRun(ctx context.Context, runID int64) ([]model.Record, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT r.mpn, r.lcsc_code, r.manufacturer, r.description,
		        r.category, r.subcategory, r.child_category, r.specs, r.page
		 FROM records r
		 JOIN category_results cr ON cr.id = r.category_result_id
		 WHERE cr.run_id = ?
		 ORDER BY r.id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var specsJSON string
		if err := rows.Scan(
			&rec.MPN,
			&rec.LCSCCode,
			&rec.Manufacturer,
			&rec.Description,
			&rec.Category,
			&rec.Subcategory,
			&rec.ChildCategory,
			&specsJSON,
			&rec.Page,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if specsJSON != "" {
			if err := json.Unmarshal([]byte(specsJSON), &rec.Specs); err != nil {
				return nil, fmt.Errorf("failed to parse specs: %w", err)
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// FindByCode returns the most recently stored record for a catalog code,
// or nil when the code was never harvested.
func (hdb *HarvestDB) FindByCode(ctx context.Context, code string) (*model.Record, error) {
	var rec model.Record
	var specsJSON string

	err := hdb.db.QueryRowContext(ctx,
		`SELECT mpn, lcsc_code, manufacturer, description,
		        category, subcategory, child_category, specs, page
		 FROM records WHERE lcsc_code = ? ORDER BY id DESC LIMIT 1`, code).Scan(
		&rec.MPN,
		&rec.LCSCCode,
		&rec.Manufacturer,
		&rec.Description,
		&rec.Category,
		&rec.Subcategory,
		&rec.ChildCategory,
		&specsJSON,
		&rec.Page,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find record: %w", err)
	}

	if specsJSON != "" {
		if err := json.Unmarshal([]byte(specsJSON), &rec.Specs); err != nil {
			return nil, fmt.Errorf("failed to parse specs: %w", err)
		}
	}

	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
