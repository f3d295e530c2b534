package builder

import (
	"fmt"
	"strings"

	"github.com/dbtoolkit/quickquery/internal/coerce"
	"github.com/dbtoolkit/quickquery/internal/identifier"
	"github.com/dbtoolkit/quickquery/internal/schema"
)

// buildUpdate produces the three-part update script: a "before" SELECT of
// the touched fields, one UPDATE per row, and an identical "after" SELECT.
func buildUpdate(in Input, fields []schema.FieldDefinition, pks []string) (string, error) {
	if len(pks) == 0 {
		return "", &StructuralError{Message: "primary key values required"}
	}

	rows, err := coerceRows(in, fields)
	if err != nil {
		return "", err
	}

	pkSet := make(map[string]bool, len(pks))
	for _, pk := range pks {
		pkSet[pk] = true
	}

	// A grid where no row carries its key is a structural mistake, reported
	// once; a grid where only some rows are incomplete points at the first
	// offending cell.
	keyed := 0
	for _, row := range rows {
		if _, ok := pkLiterals(row, pks); ok {
			keyed++
		}
	}
	if keyed == 0 {
		return "", &StructuralError{Message: "primary key values required"}
	}

	// Every remaining row must carry its full key; an UPDATE without one
	// would touch the wrong rows.
	for _, row := range rows {
		for _, c := range row.cells {
			if !pkSet[c.field.Name] {
				continue
			}
			if c.omit || c.literal == "" {
				return "", &coerce.ValueError{
					Field:  c.field.Name,
					Cell:   schema.CellRef(c.col, row.gridRow),
					Reason: coerce.NullNotAllowed,
					Detail: "Primary key must have a value for UPDATE operation.",
				}
			}
		}
	}

	touched := touchedFields(in.Schema, fields, rows, pkSet)
	if len(touched) == 0 {
		return "", &StructuralError{Message: "no fields to update"}
	}

	where, _ := whereInPK(pks, rows)
	selectStmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s;\n",
		strings.Join(touched, ", "), in.Table, where)

	var sb strings.Builder
	sb.WriteString(Header + "\n")
	sb.WriteString(selectStmt)

	wroteAny := false
	for _, row := range rows {
		var sets []string
		for _, c := range row.cells {
			if pkSet[c.field.Name] || isCreatedAudit(c.field.Name) || c.omit {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = %s", identifier.Format(c.field.Name), c.literal))
		}
		if len(sets) == 0 {
			continue
		}
		var conds []string
		lits, _ := pkLiterals(row, pks)
		for i, pk := range pks {
			conds = append(conds, fmt.Sprintf("%s = %s", identifier.Format(pk), lits[i]))
		}
		fmt.Fprintf(&sb, "UPDATE %s SET %s WHERE %s;\n",
			in.Table, strings.Join(sets, ", "), strings.Join(conds, " AND "))
		wroteAny = true
	}
	if !wroteAny {
		return "", &StructuralError{Message: "no fields to update"}
	}

	sb.WriteString(selectStmt)
	return sb.String(), nil
}

// touchedFields collects the distinct non-key, non-creation-audit fields set
// by at least one row, in header order, for the before/after SELECT list.
// The update audit columns ride along whenever the schema declares them.
func touchedFields(s schema.Schema, fields []schema.FieldDefinition, rows []coercedRow, pkSet map[string]bool) []string {
	set := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !set[name] {
			set[name] = true
			names = append(names, identifier.Format(name))
		}
	}

	for colIdx, f := range fields {
		if pkSet[f.Name] || isCreatedAudit(f.Name) {
			continue
		}
		for _, row := range rows {
			if colIdx < len(row.cells) && !row.cells[colIdx].omit {
				add(f.Name)
				break
			}
		}
	}
	for _, f := range s.Fields {
		lower := strings.ToLower(f.Name)
		if lower == "updated_time" || lower == "updated_by" {
			add(f.Name)
		}
	}
	return names
}
