// Package identifier validates and formats Oracle identifiers. Validation is
// the injection gate for table and column names: nothing reaches SQL text
// before passing it.
package identifier

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxLength is the Oracle 12.2+ identifier length limit.
const MaxLength = 128

// Error reports a rejected identifier together with the offending part and
// the reason it was rejected.
type Error struct {
	Part   string
	Reason string
}

func (e *Error) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("invalid identifier: %s", e.Reason)
	}
	return fmt.Sprintf("invalid identifier %q: %s", e.Part, e.Reason)
}

// Validate checks a single (unqualified) identifier.
func Validate(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &Error{Part: name, Reason: "empty identifier"}
	}
	if len(name) > MaxLength {
		return &Error{Part: name, Reason: fmt.Sprintf("longer than %d characters", MaxLength)}
	}
	for _, r := range name {
		switch r {
		case ';', '\'', '"', '\\', '`':
			return &Error{Part: name, Reason: fmt.Sprintf("forbidden character %q", r)}
		}
		if r == '\r' || r == '\n' || r == '\t' || unicode.IsControl(r) {
			return &Error{Part: name, Reason: "control character"}
		}
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return &Error{Part: name, Reason: "must start with a letter"}
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' && r != '#' {
			return &Error{Part: name, Reason: fmt.Sprintf("forbidden character %q", r)}
		}
	}
	return nil
}

// ValidateQualified checks an identifier that may carry a schema qualifier
// (schema.table). Each side of the dot is validated independently.
func ValidateQualified(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &Error{Part: name, Reason: "empty identifier"}
	}
	if !strings.Contains(name, ".") {
		return Validate(name)
	}
	parts := strings.Split(name, ".")
	if len(parts) != 2 {
		return &Error{Part: name, Reason: "more than one qualifier separator"}
	}
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return &Error{Part: name, Reason: "empty name on one side of the qualifier"}
		}
		if err := Validate(part); err != nil {
			return err
		}
	}
	return nil
}

// Format renders a column name for emitted SQL. Oracle folds unquoted
// identifiers to uppercase, so a lowercase name can stay unquoted unless it
// is a reserved word; names carrying uppercase letters are folded to
// lowercase and left unquoted, preserving case-insensitive intent without
// quoting noise.
func Format(name string) string {
	lower := strings.ToLower(name)
	if name == lower && IsReservedWord(strings.ToUpper(name)) {
		return `"` + name + `"`
	}
	return lower
}
