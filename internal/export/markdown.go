package export

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// MarkdownWriter outputs run results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full run result in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeCategorySummary(md, run)
	w.writeRecordTables(md, run)

	return len(md.String()), md.Build()
}

// writeHeader writes the run overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunResult) {
	md.H1("LCSC Harvest Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", run.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Categories", strconv.Itoa(len(run.Categories))},
			{"Skipped", strconv.Itoa(run.Skipped)},
			{"Records", strconv.Itoa(run.TotalRecords())},
		},
	})
	md.PlainText("")
}

// writeCategorySummary writes one row per harvested category.
func (w *MarkdownWriter) writeCategorySummary(md *markdown.Markdown, run *model.RunResult) {
	md.H2("Categories")
	md.PlainText("")

	rows := make([][]string, 0, len(run.Categories))
	for _, cr := range run.Categories {
		status := "complete"
		if cr.Aborted {
			status = "aborted"
		}
		rows = append(rows, []string{
			strconv.Itoa(cr.Category.ID),
			cr.Category.Name,
			strconv.Itoa(len(cr.Records)),
			strconv.Itoa(cr.PagesFetched),
			status,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Category", "Records", "Pages", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecordTables writes one section per record table.
func (w *MarkdownWriter) writeRecordTables(md *markdown.Markdown, run *model.RunResult) {
	for _, table := range BuildTables(run) {
		md.H2(table.Name)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: TableColumns,
			Rows:   table.Rows,
		})
		md.PlainText("")
	}
}
