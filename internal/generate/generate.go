// Package generate is the pipeline facade: it runs schema validation, value
// coercion, and statement building as one pure pass over the inputs. The
// same code path serves both synchronous and background execution, which is
// what keeps the two modes byte-identical.
package generate

import (
	"github.com/dbtoolkit/quickquery/internal/builder"
	"github.com/dbtoolkit/quickquery/internal/coerce"
	"github.com/dbtoolkit/quickquery/internal/dupkey"
	"github.com/dbtoolkit/quickquery/internal/schema"
	"github.com/google/uuid"
)

// ProgressFunc receives coarse pipeline progress. It must not block.
type ProgressFunc func(percent int, phase string)

// Request is one generation request. Attachments and NewUUID are the
// injected collaborators; NewUUID defaults to a random v4 generator.
type Request struct {
	Table       string
	Kind        coerce.StatementKind
	Schema      schema.Schema
	Grid        schema.Grid
	Attachments builder.AttachmentResolver
	NewUUID     coerce.UUIDSource
	Progress    ProgressFunc
}

// Result carries the generated script together with the advisory
// duplicate-key report, which is produced regardless of generation success.
type Result struct {
	SQL        string
	Duplicates dupkey.Report
}

// Run executes the full generation pipeline.
func Run(req Request) (Result, error) {
	emit := req.Progress
	if emit == nil {
		emit = func(int, string) {}
	}
	if req.NewUUID == nil {
		req.NewUUID = uuid.NewString
	}

	emit(5, "validating schema")
	if err := schema.MatchData(req.Schema, req.Grid); err != nil {
		return Result{Duplicates: detect(req)}, err
	}

	emit(25, "building statements")
	sql, err := builder.Build(builder.Input{
		Table:       req.Table,
		Kind:        req.Kind,
		Schema:      req.Schema,
		Grid:        req.Grid,
		Attachments: req.Attachments,
		NewUUID:     req.NewUUID,
	})

	emit(85, "checking duplicate keys")
	result := Result{SQL: sql, Duplicates: detect(req)}
	if err != nil {
		return Result{Duplicates: result.Duplicates}, err
	}

	emit(100, "done")
	return result, nil
}

func detect(req Request) dupkey.Report {
	pks := builder.ResolvePrimaryKeys(req.Table, req.Schema)
	return dupkey.Detect(pks, req.Grid)
}

// DetectDuplicatePrimaryKeys runs only the advisory duplicate scan.
func DetectDuplicatePrimaryKeys(table string, s schema.Schema, g schema.Grid) dupkey.Report {
	return dupkey.Detect(builder.ResolvePrimaryKeys(table, s), g)
}
