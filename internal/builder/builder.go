// Package builder assembles INSERT, MERGE, and UPDATE scripts from a
// validated schema and a row grid. All identifier validation runs here
// before any SQL text is emitted.
package builder

import (
	"fmt"
	"strings"

	"github.com/dbtoolkit/quickquery/internal/coerce"
	"github.com/dbtoolkit/quickquery/internal/identifier"
	"github.com/dbtoolkit/quickquery/internal/schema"
)

// Header is prepended to every generated script. It stops SQL*Plus and SQL
// Developer from treating & in string literals as a substitution variable.
const Header = "SET DEFINE OFF;"

// AttachmentResolver may replace a cell's raw value before coercion, e.g.
// substituting an attached file's content when the cell names the file.
type AttachmentResolver func(rawValue, normalizedType string, maxLength int, tableName string) (string, bool)

// Input is one generation request.
type Input struct {
	Table       string
	Kind        coerce.StatementKind
	Schema      schema.Schema
	Grid        schema.Grid
	Attachments AttachmentResolver
	NewUUID     coerce.UUIDSource
}

// StructuralError is a table-scoped generation failure, as opposed to a
// per-cell value error.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string { return e.Message }

// coercedCell is one coerced value bound to its field and grid position.
type coercedCell struct {
	field   schema.FieldDefinition
	col     int
	literal string
	omit    bool
	auto    bool
}

// coercedRow is one data row after coercion, with its original grid index.
type coercedRow struct {
	gridRow int
	cells   []coercedCell
}

// ResolvePrimaryKeys applies the fixed key-resolution precedence: a config
// table with a parameter_key field is keyed by that field alone; otherwise
// the schema's flagged primary keys; otherwise the first field as a last
// resort.
func ResolvePrimaryKeys(table string, s schema.Schema) []string {
	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(table)), "config") && s.Has("parameter_key") {
		return []string{"parameter_key"}
	}
	if pks := s.PrimaryKeys(); len(pks) > 0 {
		return pks
	}
	if len(s.Fields) > 0 {
		return []string{s.Fields[0].Name}
	}
	return nil
}

// Build generates the full SQL script for the request: the SET DEFINE OFF
// header, one statement per data row, and the trailing verification SELECT.
func Build(in Input) (string, error) {
	if err := identifier.ValidateQualified(in.Table); err != nil {
		return "", err
	}
	for _, h := range in.Grid.Header {
		if err := identifier.Validate(h); err != nil {
			return "", err
		}
	}
	if err := schema.MatchData(in.Schema, in.Grid); err != nil {
		return "", err
	}

	fields, err := headerFields(in.Schema, in.Grid)
	if err != nil {
		return "", err
	}
	pks := ResolvePrimaryKeys(in.Table, in.Schema)

	switch in.Kind {
	case coerce.Insert, coerce.Merge:
		return buildInsertOrMerge(in, fields, pks)
	case coerce.Update:
		return buildUpdate(in, fields, pks)
	default:
		return "", &StructuralError{Message: fmt.Sprintf("unsupported statement kind %v", in.Kind)}
	}
}

// headerFields maps the header row onto schema field definitions, preserving
// header order. MatchData has already guaranteed the names line up, but the
// column-letter error remains for callers that skip it.
func headerFields(s schema.Schema, g schema.Grid) ([]schema.FieldDefinition, error) {
	fields := make([]schema.FieldDefinition, 0, len(g.Header))
	for i, h := range g.Header {
		f, ok := s.Field(strings.TrimSpace(h))
		if !ok {
			return nil, &StructuralError{
				Message: fmt.Sprintf("column %s (%s) not declared in schema", schema.ColumnLetter(i), strings.TrimSpace(h)),
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// coerceRows runs every non-empty data row through value coercion,
// substituting attachments first. Coercion fails fast on the first bad
// cell, annotated with its spreadsheet coordinate.
func coerceRows(in Input, fields []schema.FieldDefinition) ([]coercedRow, error) {
	var rows []coercedRow
	for rowIdx := range in.Grid.Rows {
		if in.Grid.IsRowEmpty(rowIdx) {
			continue
		}
		row := coercedRow{gridRow: rowIdx}
		for col, f := range fields {
			raw := in.Grid.Cell(rowIdx, col)
			desc := f.Type()
			if in.Attachments != nil {
				if replacement, ok := in.Attachments(raw, desc.Raw, desc.MaxLength, in.Table); ok {
					raw = replacement
				}
			}
			res, err := coerce.Coerce(coerce.Request{
				Raw:      raw,
				Field:    f.Name,
				Table:    in.Table,
				Desc:     desc,
				Nullable: f.Nullable,
				Kind:     in.Kind,
				NewUUID:  in.NewUUID,
			})
			if err != nil {
				if verr, ok := err.(*coerce.ValueError); ok {
					verr.Cell = schema.CellRef(col, rowIdx)
				}
				return nil, err
			}
			row.cells = append(row.cells, coercedCell{
				field:   f,
				col:     col,
				literal: res.Literal,
				omit:    res.Omit,
				auto:    res.Auto,
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// isCreatedAudit reports whether a field is a creation audit column, which
// must never appear in an UPDATE SET or MERGE matched branch.
func isCreatedAudit(name string) bool {
	lower := strings.ToLower(name)
	return lower == "created_time" || lower == "created_by"
}

func formatFieldList(fields []schema.FieldDefinition) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = identifier.Format(f.Name)
	}
	return strings.Join(names, ", ")
}
