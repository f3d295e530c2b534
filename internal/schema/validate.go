package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Finding is one schema-validation violation, tied to a 1-based
// field-definition row.
type Finding struct {
	Row     int
	Kind    string
	Message string
}

// ValidationError aggregates all violations found in a field-definition
// table. Validation never stops at the first problem.
type ValidationError struct {
	Findings []Finding
}

func (e *ValidationError) Error() string {
	byKind := make(map[string][]string)
	var kinds []string
	for _, f := range e.Findings {
		if _, seen := byKind[f.Kind]; !seen {
			kinds = append(kinds, f.Kind)
		}
		byKind[f.Kind] = append(byKind[f.Kind], f.Message)
	}
	sort.Strings(kinds)
	var sb strings.Builder
	sb.WriteString("schema validation failed:")
	for _, k := range kinds {
		sb.WriteString(fmt.Sprintf("\n  %s: %s", k, strings.Join(byKind[k], "; ")))
	}
	return sb.String()
}

// Finding kinds.
const (
	FindingMissingName     = "missing field name"
	FindingMissingType     = "missing declared type"
	FindingUnknownType     = "unrecognized type"
	FindingMissingNullable = "missing nullable flag"
	FindingBadNullable     = "invalid nullable flag"
	FindingBadPrimaryKey   = "invalid primary key flag"
	FindingDuplicateName   = "duplicate field name"
)

var typeKeywords = []string{
	"NUMBER", "VARCHAR2", "VARCHAR", "CHAR", "DATE", "TIMESTAMP", "CLOB", "BLOB",
}

func hasRecognizedTypeKeyword(declared string) bool {
	upper := strings.ToUpper(strings.TrimSpace(declared))
	for _, kw := range typeKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// parseFlag maps a yes/no token to a bool. The token set is fixed and
// case-insensitive.
func parseFlag(token string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	default:
		return false, false
	}
}

// ParseTable validates a raw field-definition table and converts it into a
// Schema. Columns are positional: name, declared type, nullable flag,
// default value, primary-key flag; the last two may be absent. Fully blank
// rows are skipped. All violations across all rows are collected and
// returned together.
func ParseTable(rows [][]string) (Schema, error) {
	var s Schema
	var findings []Finding
	seen := make(map[string]int)

	rowNum := 0
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		rowNum++

		name := strings.TrimSpace(cellAt(row, 0))
		declared := strings.TrimSpace(cellAt(row, 1))
		nullTok := strings.TrimSpace(cellAt(row, 2))
		defVal := strings.TrimSpace(cellAt(row, 3))
		pkTok := strings.TrimSpace(cellAt(row, 4))

		if name == "" {
			findings = append(findings, Finding{rowNum, FindingMissingName, fmt.Sprintf("row %d", rowNum)})
		} else if prev, dup := seen[name]; dup {
			findings = append(findings, Finding{rowNum, FindingDuplicateName,
				fmt.Sprintf("%q on rows %d and %d", name, prev, rowNum)})
		} else {
			seen[name] = rowNum
		}

		if declared == "" {
			findings = append(findings, Finding{rowNum, FindingMissingType, fmt.Sprintf("row %d (%s)", rowNum, name)})
		} else if !hasRecognizedTypeKeyword(declared) {
			findings = append(findings, Finding{rowNum, FindingUnknownType,
				fmt.Sprintf("%q on row %d", declared, rowNum)})
		}

		var nullable bool
		if nullTok == "" {
			findings = append(findings, Finding{rowNum, FindingMissingNullable, fmt.Sprintf("row %d (%s)", rowNum, name)})
		} else {
			var ok bool
			nullable, ok = parseFlag(nullTok)
			if !ok {
				findings = append(findings, Finding{rowNum, FindingBadNullable,
					fmt.Sprintf("%q on row %d (expected yes/no/y/n)", nullTok, rowNum)})
			}
		}

		isPK := false
		if pkTok != "" {
			var ok bool
			isPK, ok = parseFlag(pkTok)
			if !ok {
				findings = append(findings, Finding{rowNum, FindingBadPrimaryKey,
					fmt.Sprintf("%q on row %d (expected yes/no/y/n)", pkTok, rowNum)})
			}
		}

		s.Fields = append(s.Fields, FieldDefinition{
			Name:         name,
			DeclaredType: declared,
			Nullable:     nullable,
			DefaultValue: defVal,
			Order:        rowNum,
			IsPrimaryKey: isPK,
		})
	}

	if len(findings) > 0 {
		return Schema{}, &ValidationError{Findings: findings}
	}
	return s, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// MatchError reports a shape mismatch between the schema and the data grid.
type MatchError struct {
	Message       string
	MissingInData []string
	NotInSchema   []string
}

func (e *MatchError) Error() string {
	msg := e.Message
	if len(e.NotInSchema) > 0 {
		msg += fmt.Sprintf("; columns not declared in schema: %s", strings.Join(e.NotInSchema, ", "))
	}
	if len(e.MissingInData) > 0 {
		msg += fmt.Sprintf("; schema fields missing from data: %s", strings.Join(e.MissingInData, ", "))
	}
	return msg
}

// MatchData verifies that the data grid and the schema describe the same
// field set: the schema is non-empty, the header is non-empty with no blank
// cells, at least one data row carries values, and header names match schema
// field names exactly in both directions.
func MatchData(s Schema, g Grid) error {
	if len(s.Fields) == 0 {
		return &MatchError{Message: "schema has no field definitions"}
	}
	if len(g.Header) == 0 {
		return &MatchError{Message: "data has no header row"}
	}
	for i, h := range g.Header {
		if strings.TrimSpace(h) == "" {
			return &MatchError{Message: fmt.Sprintf("empty header cell at column %s", ColumnLetter(i))}
		}
	}

	hasData := false
	for i := range g.Rows {
		if !g.IsRowEmpty(i) {
			hasData = true
			break
		}
	}
	if !hasData {
		return &MatchError{Message: "data has no rows"}
	}

	inSchema := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		inSchema[f.Name] = true
	}
	inHeader := make(map[string]bool, len(g.Header))
	var notInSchema []string
	for _, h := range g.Header {
		h = strings.TrimSpace(h)
		inHeader[h] = true
		if !inSchema[h] {
			notInSchema = append(notInSchema, h)
		}
	}
	var missingInData []string
	for _, f := range s.Fields {
		if !inHeader[f.Name] {
			missingInData = append(missingInData, f.Name)
		}
	}

	if len(notInSchema) > 0 || len(missingInData) > 0 {
		return &MatchError{
			Message:       "data columns do not match schema fields",
			MissingInData: missingInData,
			NotInSchema:   notInSchema,
		}
	}
	return nil
}
