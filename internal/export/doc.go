// Package export renders harvest results for human and machine
// consumption.
//
// This package implements:
//   - Table grouping: records are arranged into per-category tables
//     with sanitized sheet-style names
//   - A Markdown writer for readable reports
//   - A JSON writer for tool integration
//   - A CSV writer producing one file per table
//
// Design decision: All writers implement a common Writer interface so
// the command layer can fan one run result out to several formats with
// a MultiWriter.
package export
