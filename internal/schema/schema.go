// Package schema models the field-definition table and the row grid that
// drive SQL generation, and validates both before any statement is built.
package schema

import (
	"strings"

	"github.com/dbtoolkit/quickquery/internal/oratype"
)

// FieldDefinition is one row of the field-definition table.
type FieldDefinition struct {
	Name         string
	DeclaredType string
	Nullable     bool
	DefaultValue string
	Order        int
	IsPrimaryKey bool
}

// Type returns the parsed descriptor for the declared type.
func (f FieldDefinition) Type() oratype.Descriptor {
	return oratype.Parse(f.DeclaredType)
}

// Schema is an ordered field-definition sequence.
type Schema struct {
	Fields []FieldDefinition
}

// Field looks up a field by exact name. Returns false if absent.
func (s Schema) Field(name string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Has reports whether a field with the exact name exists.
func (s Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// HasFold reports whether a field exists under case-insensitive comparison.
func (s Schema) HasFold(name string) bool {
	for _, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// PrimaryKeys returns the names of all fields flagged as primary key,
// in schema order.
func (s Schema) PrimaryKeys() []string {
	var pks []string
	for _, f := range s.Fields {
		if f.IsPrimaryKey {
			pks = append(pks, f.Name)
		}
	}
	return pks
}

// Grid is a tabular dataset: a header of column names plus data rows
// aligned by position.
type Grid struct {
	Header []string
	Rows   [][]string
}

// Cell returns the raw value at (row, col), or "" when the row is ragged
// and has no cell at that column.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// IsRowEmpty reports whether every cell of a data row is blank.
func (g Grid) IsRowEmpty(row int) bool {
	if row < 0 || row >= len(g.Rows) {
		return true
	}
	for _, c := range g.Rows[row] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
