// Package harvest drives the record harvest: it walks categories page
// by page through a catalog.PageSource, validates and deduplicates the
// extracted records, and decides when each category is exhausted.
package harvest
