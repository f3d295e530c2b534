package builder

import (
	"fmt"
	"strings"

	"github.com/dbtoolkit/quickquery/internal/coerce"
	"github.com/dbtoolkit/quickquery/internal/identifier"
	"github.com/dbtoolkit/quickquery/internal/schema"
)

func buildInsertOrMerge(in Input, fields []schema.FieldDefinition, pks []string) (string, error) {
	rows, err := coerceRows(in, fields)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(Header + "\n")
	for _, row := range rows {
		if in.Kind == coerce.Merge {
			writeMerge(&sb, in.Table, row, pks)
		} else {
			writeInsert(&sb, in.Table, row)
		}
	}
	writeVerification(&sb, in, fields, pks, rows)
	return sb.String(), nil
}

func writeInsert(sb *strings.Builder, table string, row coercedRow) {
	names := make([]string, len(row.cells))
	values := make([]string, len(row.cells))
	for i, c := range row.cells {
		names[i] = identifier.Format(c.field.Name)
		values[i] = c.literal
	}
	fmt.Fprintf(sb, "INSERT INTO %s (%s) VALUES (%s);\n",
		table, strings.Join(names, ", "), strings.Join(values, ", "))
}

func writeMerge(sb *strings.Builder, table string, row coercedRow, pks []string) {
	pkSet := make(map[string]bool, len(pks))
	for _, pk := range pks {
		pkSet[pk] = true
	}

	srcCols := make([]string, len(row.cells))
	for i, c := range row.cells {
		srcCols[i] = fmt.Sprintf("%s AS %s", c.literal, identifier.Format(c.field.Name))
	}

	onClauses := make([]string, len(pks))
	for i, pk := range pks {
		q := identifier.Format(pk)
		onClauses[i] = fmt.Sprintf("tgt.%s = src.%s", q, q)
	}

	var updateClauses []string
	for _, c := range row.cells {
		if pkSet[c.field.Name] || isCreatedAudit(c.field.Name) {
			continue
		}
		q := identifier.Format(c.field.Name)
		updateClauses = append(updateClauses, fmt.Sprintf("tgt.%s = src.%s", q, q))
	}

	insertCols := make([]string, len(row.cells))
	insertVals := make([]string, len(row.cells))
	for i, c := range row.cells {
		q := identifier.Format(c.field.Name)
		insertCols[i] = q
		insertVals[i] = "src." + q
	}

	fmt.Fprintf(sb, "MERGE INTO %s tgt\n", table)
	fmt.Fprintf(sb, "USING (SELECT %s FROM DUAL) src\n", strings.Join(srcCols, ", "))
	fmt.Fprintf(sb, "ON (%s)\n", strings.Join(onClauses, " AND "))
	if len(updateClauses) > 0 {
		sb.WriteString("WHEN MATCHED THEN\n")
		fmt.Fprintf(sb, "    UPDATE SET %s\n", strings.Join(updateClauses, ", "))
	}
	sb.WriteString("WHEN NOT MATCHED THEN\n")
	fmt.Fprintf(sb, "    INSERT (%s)\n", strings.Join(insertCols, ", "))
	fmt.Fprintf(sb, "    VALUES (%s);\n", strings.Join(insertVals, ", "))
}

// writeVerification appends the trailing SELECT that lets the operator eyeball
// the affected rows. When any primary key used the max-plus-one subquery the
// key values are unknown at generation time, so the query switches from a
// WHERE-IN to a newest-rows FETCH FIRST strategy.
func writeVerification(sb *strings.Builder, in Input, fields []schema.FieldDefinition, pks []string, rows []coercedRow) {
	if len(pks) == 0 || len(rows) == 0 {
		return
	}

	if anyAutoPK(rows, pks) {
		order := identifier.Format(pks[0])
		if in.Schema.HasFold("updated_time") {
			order = identifier.Format("updated_time")
		}
		fmt.Fprintf(sb, "SELECT * FROM %s ORDER BY %s DESC FETCH FIRST %d ROWS ONLY;\n",
			in.Table, order, len(rows))
		return
	}

	where, ok := whereInPK(pks, rows)
	if !ok {
		return
	}
	fmt.Fprintf(sb, "SELECT * FROM %s WHERE %s;\n", in.Table, where)
}

func anyAutoPK(rows []coercedRow, pks []string) bool {
	pkSet := make(map[string]bool, len(pks))
	for _, pk := range pks {
		pkSet[pk] = true
	}
	for _, row := range rows {
		for _, c := range row.cells {
			if c.auto && pkSet[c.field.Name] {
				return true
			}
		}
	}
	return false
}

// whereInPK renders the composite-PK membership clause: a plain IN list for
// a single-column key, the row-value-constructor form for a composite key.
// Duplicate tuples are collapsed, order preserved.
func whereInPK(pks []string, rows []coercedRow) (string, bool) {
	var tuples []string
	seen := make(map[string]bool)
	for _, row := range rows {
		lits, ok := pkLiterals(row, pks)
		if !ok {
			continue
		}
		var tuple string
		if len(pks) == 1 {
			tuple = lits[0]
		} else {
			tuple = "(" + strings.Join(lits, ", ") + ")"
		}
		if !seen[tuple] {
			seen[tuple] = true
			tuples = append(tuples, tuple)
		}
	}
	if len(tuples) == 0 {
		return "", false
	}

	if len(pks) == 1 {
		return fmt.Sprintf("%s IN (%s)", identifier.Format(pks[0]), strings.Join(tuples, ", ")), true
	}
	quoted := make([]string, len(pks))
	for i, pk := range pks {
		quoted[i] = identifier.Format(pk)
	}
	return fmt.Sprintf("(%s) IN (%s)", strings.Join(quoted, ", "), strings.Join(tuples, ", ")), true
}

// pkLiterals pulls the coerced key literals of one row in pk order. Returns
// false when a key cell was omitted or empty.
func pkLiterals(row coercedRow, pks []string) ([]string, bool) {
	lits := make([]string, 0, len(pks))
	for _, pk := range pks {
		found := false
		for _, c := range row.cells {
			if c.field.Name == pk {
				if c.omit || c.literal == "" {
					return nil, false
				}
				lits = append(lits, c.literal)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return lits, true
}
