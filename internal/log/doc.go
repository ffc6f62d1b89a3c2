// Package log provides logging utilities built on log/slog.
//
// The package implements a ClampHandler that truncates oversized string
// attribute values before they reach the underlying handler. Harvested
// page text and raw descriptions can run to hundreds of kilobytes, and
// an unclamped debug line would make the log unreadable.
package log
