package coerce

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dbtoolkit/quickquery/internal/oratype"
)

// Oracle caps plain string literals at 4000 bytes; chunking well below that
// keeps every emitted literal safe regardless of character width.
const lobChunkSize = 1000

// coerceText length-checks a character cell against the declared maximum
// and quotes it. BYTE semantics count UTF-8 bytes, CHAR semantics count
// characters.
func coerceText(raw string, desc oratype.Descriptor, field string) (string, error) {
	if desc.HasMaxLength() {
		var length int
		var unit string
		if desc.Unit == oratype.UnitChar {
			length = utf8.RuneCountInString(raw)
			unit = "characters"
		} else {
			length = len(raw)
			unit = "bytes"
		}
		if length > desc.MaxLength {
			return "", &ValueError{
				Field:  field,
				Reason: MaxLengthExceeded,
				Detail: fmt.Sprintf("%d %s, declared %d", length, unit, desc.MaxLength),
			}
		}
	}
	return quoteString(raw), nil
}

var smartQuoteReplacer = strings.NewReplacer(
	"‘", "'", // left single
	"’", "'", // right single
	"“", `"`, // left double
	"”", `"`, // right double
	"–", "-", // en dash
	"—", "-", // em dash
)

// coerceClob reformats a large text cell as a chain of to_clob literals so
// no single literal breaches Oracle's length limit. Smart punctuation is
// normalized to plain ASCII first.
func coerceClob(raw string) string {
	text := smartQuoteReplacer.Replace(raw)
	chunks := splitRunes(text, lobChunkSize)
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = "to_clob(" + quoteString(c) + ")"
	}
	return strings.Join(parts, " || ")
}

var dataURLPrefixRe = regexp.MustCompile(`^data:[^;,]*;base64,`)

// coerceBlob wraps base64 content in a raw cast. A data-URL prefix from a
// browser file read is stripped first; long payloads are chunked so each
// cast stays under the literal limit.
func coerceBlob(raw string) string {
	b64 := dataURLPrefixRe.ReplaceAllString(raw, "")
	b64 = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, b64)

	chunks := splitRunes(b64, lobChunkSize)
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = "utl_raw.cast_to_raw(" + quoteString(c) + ")"
	}
	return "to_blob(" + strings.Join(parts, " || ") + ")"
}

// splitRunes cuts s into pieces of at most n characters, never splitting a
// multi-byte character. An empty string yields one empty piece.
func splitRunes(s string, n int) []string {
	if s == "" {
		return []string{""}
	}
	var chunks []string
	runes := []rune(s)
	for len(runes) > n {
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return append(chunks, string(runes))
}
