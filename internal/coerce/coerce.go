// Package coerce converts raw cell values into Oracle-safe literals or
// expressions according to the declared column type. Coercion is pure: the
// same input always yields the same literal, except for the uuid marker
// which draws a fresh v4 UUID from the injected generator.
package coerce

import (
	"fmt"
	"strings"

	"github.com/dbtoolkit/quickquery/internal/oratype"
)

// StatementKind selects which builder routine the coerced values feed.
type StatementKind int

const (
	Insert StatementKind = iota
	Merge
	Update
)

func (k StatementKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Merge:
		return "merge"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

// ParseStatementKind maps a kind name (case-insensitive) to a StatementKind.
func ParseStatementKind(s string) (StatementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert":
		return Insert, nil
	case "merge":
		return Merge, nil
	case "update":
		return Update, nil
	default:
		return Insert, fmt.Errorf("unknown statement kind: %q", s)
	}
}

// Reason classifies a value coercion failure.
type Reason string

const (
	NullNotAllowed    Reason = "null value not allowed"
	InvalidNumber     Reason = "invalid number"
	PrecisionExceeded Reason = "number precision exceeded"
	ScaleExceeded     Reason = "number scale exceeded"
	IntegerDigits     Reason = "integer digits exceed precision minus scale"
	MaxLengthExceeded Reason = "maximum length exceeded"
	InvalidTimestamp  Reason = "unparseable timestamp"
	UuidTooSmall      Reason = "column too small for a UUID"
	UuidUnavailable   Reason = "no UUID source configured"
)

// ValueError is a failed coercion. Cell is filled in by the statement
// builder, which knows the spreadsheet coordinate of the offending value.
type ValueError struct {
	Field  string
	Cell   string
	Reason Reason
	Detail string
}

func (e *ValueError) Error() string {
	msg := string(e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cell != "" {
		return fmt.Sprintf("%s (%s, field %s)", msg, e.Cell, e.Field)
	}
	return fmt.Sprintf("%s (field %s)", msg, e.Field)
}

// UUIDSource supplies random version-4 UUID strings. Injected so generation
// stays testable; production wiring uses google/uuid.
type UUIDSource func() string

// Request carries one cell through coercion.
type Request struct {
	Raw      string
	Field    string
	Table    string
	Desc     oratype.Descriptor
	Nullable bool
	Kind     StatementKind
	NewUUID  UUIDSource
}

// Result is a coerced cell. Omit means the field must be left out of an
// UPDATE's SET clause (empty input). Auto marks the correlated max-plus-one
// subquery form, which the builder needs to know about when it writes the
// verification SELECT.
type Result struct {
	Literal string
	Omit    bool
	Auto    bool
}

const maxSubqueryForm = "(SELECT NVL(MAX(%s)+1,1) FROM %s)"

// Coerce converts one raw cell value into its Oracle literal. The special
// cases run in a fixed order, each short-circuiting the rest: audit fields,
// empty input, the textual null, the auto-increment marker, the uuid marker,
// then the per-type dispatch.
func Coerce(req Request) (Result, error) {
	fieldLower := strings.ToLower(req.Field)
	trimmed := strings.TrimSpace(req.Raw)
	lower := strings.ToLower(trimmed)

	// Audit timestamps are always stamped server-side.
	if fieldLower == "created_time" || fieldLower == "updated_time" {
		return Result{Literal: "SYSDATE"}, nil
	}

	// Audit actors default to SYSTEM when blank.
	if fieldLower == "created_by" || fieldLower == "updated_by" {
		actor := strings.ToUpper(trimmed)
		if actor == "" {
			actor = "SYSTEM"
		}
		return Result{Literal: quoteString(actor)}, nil
	}

	if trimmed == "" {
		if req.Kind == Update {
			return Result{Omit: true}, nil
		}
		if req.Nullable {
			return Result{Literal: "NULL"}, nil
		}
		return Result{}, &ValueError{Field: req.Field, Reason: NullNotAllowed}
	}

	if lower == "null" {
		if req.Nullable {
			return Result{Literal: "NULL"}, nil
		}
		return Result{}, &ValueError{Field: req.Field, Reason: NullNotAllowed}
	}

	if req.Desc.Kind == oratype.KindNumber && isAutoIncrementMarker(fieldLower, lower) {
		literal := fmt.Sprintf(maxSubqueryForm, req.Field, req.Table)
		return Result{Literal: literal, Auto: true}, nil
	}

	if (req.Desc.Kind == oratype.KindVarchar || req.Desc.Kind == oratype.KindChar) && lower == "uuid" {
		if req.Desc.HasMaxLength() && req.Desc.MaxLength < 36 {
			return Result{}, &ValueError{
				Field:  req.Field,
				Reason: UuidTooSmall,
				Detail: fmt.Sprintf("declared length %d, need 36", req.Desc.MaxLength),
			}
		}
		if req.NewUUID == nil {
			return Result{}, &ValueError{Field: req.Field, Reason: UuidUnavailable}
		}
		return Result{Literal: quoteString(req.NewUUID())}, nil
	}

	switch req.Desc.Kind {
	case oratype.KindNumber:
		lit, err := coerceNumber(trimmed, req.Desc, req.Field)
		if err != nil {
			return Result{}, err
		}
		return Result{Literal: lit}, nil
	case oratype.KindVarchar, oratype.KindChar:
		lit, err := coerceText(req.Raw, req.Desc, req.Field)
		if err != nil {
			return Result{}, err
		}
		return Result{Literal: lit}, nil
	case oratype.KindDate, oratype.KindTimestamp:
		lit, err := FormatTimestamp(trimmed)
		if err != nil {
			return Result{}, &ValueError{
				Field:  req.Field,
				Reason: InvalidTimestamp,
				Detail: fmt.Sprintf("%q", req.Raw),
			}
		}
		return Result{Literal: lit}, nil
	case oratype.KindClob:
		return Result{Literal: coerceClob(req.Raw)}, nil
	case oratype.KindBlob:
		return Result{Literal: coerceBlob(trimmed)}, nil
	default:
		return Result{Literal: quoteString(req.Raw)}, nil
	}
}

// isAutoIncrementMarker decides whether a NUMBER cell requests the
// max-plus-one subquery. The config id columns require the exact marker;
// other numeric columns accept any value containing it.
func isAutoIncrementMarker(fieldLower, valueLower string) bool {
	if fieldLower == "config_id" || fieldLower == "system_config_id" {
		return valueLower == "max"
	}
	return strings.Contains(valueLower, "max")
}

// quoteString emits a single-quoted Oracle string literal, doubling any
// embedded quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
