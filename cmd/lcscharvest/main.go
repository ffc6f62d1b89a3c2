// Package main provides the entry point for the lcscharvest CLI.
//
// lcscharvest harvests product records from the LCSC parts catalog:
// it discovers categories, walks their pages politely, validates and
// deduplicates the extracted records, and exports them as CSV,
// Markdown, or JSON.
//
// Usage:
//
//	lcscharvest harvest
//	lcscharvest harvest --id-start 300 --id-end 400 --max-pages 5
//	lcscharvest categories
//
// See --help for all available options.
package main

// main is the entry point for lcscharvest.
func main() {
	Execute()
}
