// Package model defines the core data structures shared across the harvester.
//
// The types here are deliberately free of behavior beyond validation and
// key derivation so they can flow between the catalog, harvest, export,
// and database packages without import cycles.
//
//   - Category: a discovered catalog section (id, url, name)
//   - Record: one harvested product row
//   - Key: the deduplication identity of a Record
//   - CategoryResult / RunResult: harvest outcome summaries
package model
