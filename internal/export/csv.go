package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// CSVWriter outputs run results as one CSV file per record table,
// written into a target directory. File names follow the table names,
// so they line up with the Markdown report sections.
type CSVWriter struct {
	// dir is the directory the CSV files are written into.
	// It is created if missing.
	dir string
}

// NewCSVWriter creates a CSVWriter targeting dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Write renders every record table to {dir}/{table}.csv.
// Returns the total bytes written across all files.
func (w *CSVWriter) Write(run *model.RunResult) (int, error) {
	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := 0
	for _, table := range BuildTables(run) {
		n, err := w.writeTable(table)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeTable renders one table to its own CSV file.
func (w *CSVWriter) writeTable(table Table) (int, error) {
	path := filepath.Join(w.dir, table.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	counter := &countingWriter{w: f}
	cw := csv.NewWriter(counter)

	if err := cw.Write(TableColumns); err != nil {
		_ = f.Close()
		return counter.n, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			_ = f.Close()
			return counter.n, fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return counter.n, fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return counter.n, f.Close()
}

// countingWriter counts bytes on their way to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
