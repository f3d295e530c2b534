package splitter

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			"two statements",
			"INSERT INTO t (a) VALUES (1);\nINSERT INTO t (a) VALUES (2);",
			[]string{"INSERT INTO t (a) VALUES (1);", "INSERT INTO t (a) VALUES (2);"},
		},
		{
			"semicolon inside literal",
			"INSERT INTO t (a) VALUES ('x;y');",
			[]string{"INSERT INTO t (a) VALUES ('x;y');"},
		},
		{
			"escaped quote inside literal",
			"INSERT INTO t (a) VALUES ('it''s; fine');\nSELECT 1;",
			[]string{"INSERT INTO t (a) VALUES ('it''s; fine');", "SELECT 1;"},
		},
		{
			"multiline statement",
			"MERGE INTO t tgt\nUSING (SELECT 1 AS a FROM DUAL) src\nON (tgt.a = src.a)\nWHEN NOT MATCHED THEN\n    INSERT (a)\n    VALUES (src.a);",
			[]string{"MERGE INTO t tgt\nUSING (SELECT 1 AS a FROM DUAL) src\nON (tgt.a = src.a)\nWHEN NOT MATCHED THEN\n    INSERT (a)\n    VALUES (src.a);"},
		},
		{
			"trailing text without semicolon",
			"SELECT 1; SELECT 2",
			[]string{"SELECT 1;", "SELECT 2"},
		},
		{
			"empty input",
			"   \n ",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.sql)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tt.sql, got, tt.expected)
			}
		})
	}
}

func genScript(n, stmtSize int) string {
	var sb strings.Builder
	sb.WriteString(ChunkHeader + "\n")
	for i := 0; i < n; i++ {
		pad := strings.Repeat("x", stmtSize)
		fmt.Fprintf(&sb, "INSERT INTO t (id, pad) VALUES (%d, '%s');\n", i, pad)
	}
	sb.WriteString("SELECT * FROM t;\n")
	return sb.String()
}

func TestSplitBySize(t *testing.T) {
	sql := genScript(50, 900) // ~47 KB of statements
	limit := 10_000

	result, err := Split(sql, BySize, limit)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(result.Chunks))
	}
	for i, c := range result.Chunks {
		if c.ByteSize > limit {
			t.Errorf("chunk %d size %d exceeds limit %d", i, c.ByteSize, limit)
		}
		if c.Statements[0] != ChunkHeader {
			t.Errorf("chunk %d missing header", i)
		}
		if c.Oversized {
			t.Errorf("chunk %d should not be oversized", i)
		}
	}
}

func TestSplitOversizedStatement(t *testing.T) {
	big := "INSERT INTO t (a) VALUES ('" + strings.Repeat("x", 5000) + "');"
	sql := "INSERT INTO t (a) VALUES (1);\n" + big + "\nINSERT INTO t (a) VALUES (2);"

	result, err := Split(sql, BySize, 1000)
	if err != nil {
		t.Fatal(err)
	}

	var oversized int
	for _, c := range result.Chunks {
		if c.Oversized {
			oversized++
			if len(c.Statements) != 2 { // header + the one statement
				t.Errorf("oversized chunk should hold exactly one statement, got %v", len(c.Statements)-1)
			}
			if !strings.Contains(c.Statements[1], strings.Repeat("x", 5000)) {
				t.Error("oversized chunk lost its statement")
			}
		}
	}
	if oversized != 1 {
		t.Errorf("expected exactly one oversized chunk, got %d", oversized)
	}
}

func TestSplitByCount(t *testing.T) {
	sql := genScript(10, 10)

	result, err := Split(sql, ByCount, 4)
	if err != nil {
		t.Fatal(err)
	}
	// 10 inserts at 4 per chunk; the SELECT rides for free.
	if len(result.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(result.Chunks))
	}
	for i, c := range result.Chunks {
		if c.StatementCount > 4 {
			t.Errorf("chunk %d counts %d real statements", i, c.StatementCount)
		}
	}
	last := result.Chunks[len(result.Chunks)-1]
	tail := last.Statements[len(last.Statements)-1]
	if !strings.HasPrefix(strings.ToUpper(tail), "SELECT") {
		t.Errorf("verification select should ride in the last chunk, tail = %q", tail)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	sql := genScript(25, 100)
	original := Tokenize(sql)
	var want []string
	for _, s := range original {
		if !strings.EqualFold(s, ChunkHeader) {
			want = append(want, s)
		}
	}

	result, err := Split(sql, BySize, 2000)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range result.Chunks {
		for _, s := range c.Statements {
			if !strings.EqualFold(s, ChunkHeader) {
				got = append(got, s)
			}
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch: %d statements in, %d out", len(want), len(got))
	}
}

func TestSplitIdempotent(t *testing.T) {
	sql := genScript(40, 250)
	first, err := Split(sql, BySize, 5000)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Split(sql, BySize, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input and limit must produce identical chunks")
	}
}

func TestSplitInvalidLimit(t *testing.T) {
	if _, err := Split("SELECT 1;", BySize, 0); err == nil {
		t.Error("zero limit should be rejected")
	}
	if _, err := Split("SELECT 1;", ByCount, -1); err == nil {
		t.Error("negative limit should be rejected")
	}
}

func TestSplitEmptyInput(t *testing.T) {
	result, err := Split("", BySize, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Chunks) != 0 || result.TotalStatements != 0 {
		t.Errorf("empty input should yield no chunks: %+v", result)
	}
}

func TestChunkText(t *testing.T) {
	c := Chunk{Statements: []string{ChunkHeader, "SELECT 1;"}}
	if c.Text() != ChunkHeader+"\nSELECT 1;\n" {
		t.Errorf("Text() = %q", c.Text())
	}
}
