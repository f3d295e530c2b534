// Package dupkey scans data rows for repeated primary-key tuples. Findings
// are advisory: generation proceeds regardless, the caller decides how to
// surface the warning.
package dupkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dbtoolkit/quickquery/internal/schema"
)

// maxListedRows caps how many row numbers a single finding spells out
// before truncating.
const maxListedRows = 5

// Duplicate is one repeated primary-key tuple with the 1-based data-row
// numbers where it occurs.
type Duplicate struct {
	Key  string
	Rows []int
}

// Report is the result of a duplicate scan.
type Report struct {
	HasDuplicates bool
	Duplicates    []Duplicate
	Warning       string
}

// Detect builds an occurrence map over the primary-key tuples of the grid.
// Rows with an empty tuple component, or one carrying a uuid/max generator
// marker, are skipped: generated values are not meaningfully comparable.
func Detect(pkFields []string, g schema.Grid) Report {
	cols := make([]int, 0, len(pkFields))
	for _, pk := range pkFields {
		for i, h := range g.Header {
			if strings.TrimSpace(h) == pk {
				cols = append(cols, i)
				break
			}
		}
	}
	if len(cols) != len(pkFields) || len(cols) == 0 {
		return Report{}
	}

	occurrences := make(map[string][]int)
	var order []string
	for rowIdx := range g.Rows {
		if g.IsRowEmpty(rowIdx) {
			continue
		}
		key, ok := tupleKey(g, rowIdx, cols)
		if !ok {
			continue
		}
		if _, seen := occurrences[key]; !seen {
			order = append(order, key)
		}
		occurrences[key] = append(occurrences[key], rowIdx+1)
	}

	var report Report
	for _, key := range order {
		rows := occurrences[key]
		if len(rows) < 2 {
			continue
		}
		report.HasDuplicates = true
		report.Duplicates = append(report.Duplicates, Duplicate{Key: key, Rows: rows})
	}
	if report.HasDuplicates {
		report.Warning = buildWarning(pkFields, report.Duplicates)
	}
	return report
}

// tupleKey joins the trimmed PK components of one row. Returns false when
// the row must be excluded from detection.
func tupleKey(g schema.Grid, rowIdx int, cols []int) (string, bool) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		v := strings.TrimSpace(g.Cell(rowIdx, col))
		if v == "" || strings.EqualFold(v, "null") {
			return "", false
		}
		lower := strings.ToLower(v)
		if strings.Contains(lower, "uuid") || strings.Contains(lower, "max") {
			return "", false
		}
		parts[i] = v
	}
	return strings.Join(parts, "|"), true
}

func buildWarning(pkFields []string, dups []Duplicate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Duplicate primary key values for (%s):", strings.Join(pkFields, ", "))
	for _, d := range dups {
		rows := d.Rows
		extra := 0
		if len(rows) > maxListedRows {
			extra = len(rows) - maxListedRows
			rows = rows[:maxListedRows]
		}
		listed := make([]string, len(rows))
		for i, r := range rows {
			listed[i] = strconv.Itoa(r)
		}
		fmt.Fprintf(&sb, "\n  %s: rows %s", strings.ReplaceAll(d.Key, "|", ", "), strings.Join(listed, ", "))
		if extra > 0 {
			fmt.Fprintf(&sb, " and %d more", extra)
		}
	}
	return sb.String()
}
