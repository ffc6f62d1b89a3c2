package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// TableColumns is the fixed column order shared by all tabular formats.
var TableColumns = []string{
	"mpn",
	"lcsc_code",
	"manufacturer",
	"description",
	"category",
	"subcategory",
	"child_category",
	"specs_json",
	"page",
}

// Table is one named group of records rendered as rows.
// The name follows spreadsheet sheet-name rules so the same grouping
// works for CSV file names and Markdown section titles alike.
type Table struct {
	// Name is the sanitized, unique table name.
	Name string

	// Rows hold one record each, in TableColumns order.
	Rows [][]string
}

// sheetInvalidChars are the characters spreadsheet tools refuse in
// sheet names.
var sheetInvalidChars = regexp.MustCompile(`[\\/*?:\[\]]`)

// maxSheetNameLength is the spreadsheet sheet-name limit.
const maxSheetNameLength = 31

// BuildTables arranges a run's records into one table per category
// result, in run order. The table name comes from the deepest category
// level the records carry, falling back to the category's own name.
func BuildTables(run *model.RunResult) []Table {
	used := make(map[string]bool)
	tables := make([]Table, 0, len(run.Categories))

	for _, cr := range run.Categories {
		name := uniqueSheetName(sanitizeSheetName(tableBaseName(cr)), used)

		rows := make([][]string, 0, len(cr.Records))
		for _, rec := range cr.Records {
			rows = append(rows, recordRow(rec))
		}

		tables = append(tables, Table{Name: name, Rows: rows})
	}

	return tables
}

// tableBaseName picks the most specific category name available.
func tableBaseName(cr model.CategoryResult) string {
	for _, rec := range cr.Records {
		if rec.ChildCategory != "" {
			return rec.ChildCategory
		}
		if rec.Subcategory != "" {
			return rec.Subcategory
		}
		if rec.Category != "" {
			return rec.Category
		}
		break
	}
	if cr.Category.Name != "" {
		return cr.Category.Name
	}
	return fmt.Sprintf("category_%d", cr.Category.ID)
}

// sanitizeSheetName replaces characters spreadsheet tools reject and
// enforces the length limit.
func sanitizeSheetName(name string) string {
	name = sheetInvalidChars.ReplaceAllString(name, "_")
	if name == "" {
		name = "records"
	}
	if len(name) > maxSheetNameLength {
		name = name[:maxSheetNameLength]
	}
	return name
}

// uniqueSheetName disambiguates repeated names with a numeric suffix.
// The base is cut so name plus suffix stays within the length limit.
func uniqueSheetName(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}

	base := name
	if len(base) > maxSheetNameLength-3 {
		base = base[:maxSheetNameLength-3]
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// recordRow flattens one record into TableColumns order.
func recordRow(rec model.Record) []string {
	specsJSON := ""
	if len(rec.Specs) > 0 {
		if b, err := json.Marshal(rec.Specs); err == nil {
			specsJSON = string(b)
		}
	}

	return []string{
		rec.MPN,
		rec.LCSCCode,
		rec.Manufacturer,
		rec.Description,
		rec.Category,
		rec.Subcategory,
		rec.ChildCategory,
		specsJSON,
		strconv.Itoa(rec.Page),
	}
}
