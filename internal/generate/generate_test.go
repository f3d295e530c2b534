package generate

import (
	"strings"
	"testing"

	"github.com/dbtoolkit/quickquery/internal/coerce"
	"github.com/dbtoolkit/quickquery/internal/schema"
)

func testSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.ParseTable([][]string{
		{"id", "NUMBER", "no", "", "yes"},
		{"name", "VARCHAR2(50)", "yes"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRun(t *testing.T) {
	var phases []string
	result, err := Run(Request{
		Table:  "T",
		Kind:   coerce.Insert,
		Schema: testSchema(t),
		Grid: schema.Grid{
			Header: []string{"id", "name"},
			Rows:   [][]string{{"1", "Ann"}},
		},
		Progress: func(pct int, phase string) { phases = append(phases, phase) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(result.SQL, "INSERT INTO T (id, name) VALUES (1, 'Ann');") {
		t.Errorf("sql:\n%s", result.SQL)
	}
	if result.Duplicates.HasDuplicates {
		t.Error("no duplicates expected")
	}
	if phases[len(phases)-1] != "done" {
		t.Errorf("phases = %v", phases)
	}
}

func TestRunDeterministic(t *testing.T) {
	req := Request{
		Table:  "T",
		Kind:   coerce.Merge,
		Schema: testSchema(t),
		Grid: schema.Grid{
			Header: []string{"id", "name"},
			Rows:   [][]string{{"1", "Ann"}, {"2", "Bob"}},
		},
	}
	first, err := Run(req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(req)
	if err != nil {
		t.Fatal(err)
	}
	if first.SQL != second.SQL {
		t.Error("same inputs must generate byte-identical SQL")
	}
}

func TestRunDuplicatesReportedDespiteError(t *testing.T) {
	result, err := Run(Request{
		Table:  "T",
		Kind:   coerce.Insert,
		Schema: testSchema(t),
		Grid: schema.Grid{
			Header: []string{"id", "name"},
			Rows:   [][]string{{"5", "Ann"}, {"5", strings.Repeat("x", 60)}},
		},
	})
	if err == nil {
		t.Fatal("expected length error")
	}
	if !result.Duplicates.HasDuplicates {
		t.Error("duplicate scan must run regardless of generation failure")
	}
}

func TestDetectDuplicatePrimaryKeys(t *testing.T) {
	g := schema.Grid{
		Header: []string{"id", "name"},
		Rows:   [][]string{{"5", "a"}, {"6", "b"}, {"5", "c"}},
	}
	report := DetectDuplicatePrimaryKeys("T", testSchema(t), g)
	if !report.HasDuplicates {
		t.Fatal("expected duplicates")
	}
	if len(report.Duplicates) != 1 || report.Duplicates[0].Key != "5" {
		t.Errorf("duplicates = %+v", report.Duplicates)
	}
	if !strings.Contains(report.Warning, "rows 1, 3") {
		t.Errorf("warning = %q", report.Warning)
	}
}
