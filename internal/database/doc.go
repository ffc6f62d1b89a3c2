// Package database provides SQLite-based storage for harvest runs.
//
// This package implements the HarvestDB, which stores:
//   - Run summaries (time bounds, source strategy, dedup scope)
//   - Per-category harvest results
//   - The harvested product records with their specification maps
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of
// other databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. A harvest run writes a few thousand rows at most
// 4. WAL mode provides good concurrent read performance
package database
