// Package splitter re-tokenizes a generated SQL script into statements and
// groups them into bounded chunks. The tokenizer is a two-state scanner
// (normal, in-string) so a semicolon inside a quoted literal never splits a
// statement.
package splitter

import (
	"fmt"
	"strings"
)

// ChunkHeader is re-prepended to every emitted chunk so each one can run
// standalone in SQL*Plus.
const ChunkHeader = "SET DEFINE OFF;"

// Mode selects what the chunk limit bounds.
type Mode int

const (
	// BySize bounds each chunk's byte size.
	BySize Mode = iota
	// ByCount bounds the number of real (non-decorative) statements.
	ByCount
)

func (m Mode) String() string {
	if m == ByCount {
		return "count"
	}
	return "size"
}

// Chunk is one bounded group of statements, header included. Oversized
// marks a chunk whose single payload statement alone exceeds the byte
// limit; it is emitted whole rather than truncated.
type Chunk struct {
	Statements     []string
	ByteSize       int
	StatementCount int
	Oversized      bool
}

// Text renders the chunk as a runnable script.
func (c Chunk) Text() string {
	return strings.Join(c.Statements, "\n") + "\n"
}

// Result is the outcome of one split request.
type Result struct {
	Chunks          []Chunk
	TotalStatements int
}

// Split tokenizes the SQL text and greedily packs statements into chunks
// under the limit. Statement order is preserved across chunks. Existing
// chunk-header lines in the input are dropped and one is re-prepended per
// chunk.
func Split(sql string, mode Mode, limit int) (Result, error) {
	if limit <= 0 {
		return Result{}, fmt.Errorf("split limit must be positive, got %d", limit)
	}

	statements := Tokenize(sql)
	var payload []string
	for _, s := range statements {
		if strings.EqualFold(s, ChunkHeader) {
			continue
		}
		payload = append(payload, s)
	}

	var result Result
	result.TotalStatements = len(payload)
	if len(payload) == 0 {
		return result, nil
	}

	newChunk := func() Chunk {
		return Chunk{
			Statements: []string{ChunkHeader},
			ByteSize:   len(ChunkHeader) + 1,
		}
	}

	current := newChunk()
	flush := func() {
		if len(current.Statements) > 1 {
			if mode == BySize && current.ByteSize > limit {
				current.Oversized = true
			}
			result.Chunks = append(result.Chunks, current)
			current = newChunk()
		}
	}

	for _, stmt := range payload {
		size := len(stmt) + 1
		counts := 0
		if isRealStatement(stmt) {
			counts = 1
		}

		switch mode {
		case BySize:
			if len(current.Statements) > 1 && current.ByteSize+size > limit {
				flush()
			}
		case ByCount:
			if current.StatementCount+counts > limit && current.StatementCount > 0 {
				flush()
			}
		}

		current.Statements = append(current.Statements, stmt)
		current.ByteSize += size
		current.StatementCount += counts
	}
	flush()

	return result, nil
}

// isRealStatement reports whether a statement counts toward a ByCount
// limit. Decorative SET commands and verification SELECTs ride along for
// free; they still contribute to byte size.
func isRealStatement(stmt string) bool {
	upper := strings.ToUpper(stmt)
	return !strings.HasPrefix(upper, "SET ") && !strings.HasPrefix(upper, "SELECT ")
}

// Tokenize splits SQL text into semicolon-terminated statements. The
// scanner tracks whether it is inside a single-quoted literal; a doubled
// quote inside a literal toggles the state twice and so never breaks it.
func Tokenize(sql string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for _, r := range sql {
		current.WriteRune(r)
		switch r {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				if stmt := strings.TrimSpace(current.String()); stmt != "" {
					statements = append(statements, stmt)
				}
				current.Reset()
			}
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		statements = append(statements, tail)
	}
	return statements
}
