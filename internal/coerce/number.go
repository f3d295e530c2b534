package coerce

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dbtoolkit/quickquery/internal/oratype"
)

// thousandsRe matches a single-comma value that reads as a thousands
// grouping rather than a decimal comma: -?d{1,3},ddd.
var thousandsRe = regexp.MustCompile(`^-?\d{1,3},\d{3}$`)

// normalizeNumberSeparators rewrites locale-flavored numeric input into the
// canonical dot-decimal form. Multiple commas are grouping separators; when
// both comma and dot appear the rightmost one is the decimal point; a single
// comma is a grouping separator only when it sits exactly three digits from
// the end of a short integer part.
func normalizeNumberSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas == 0:
		return s
	case dots > 0:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	default:
		if thousandsRe.MatchString(s) {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	}
}

// coerceNumber validates a numeric cell and returns the normalized literal.
// Declared precision and scale are enforced on the digit counts of the
// normalized value.
func coerceNumber(raw string, desc oratype.Descriptor, field string) (string, error) {
	normalized := normalizeNumberSeparators(raw)

	if _, err := strconv.ParseFloat(normalized, 64); err != nil {
		return "", &ValueError{Field: field, Reason: InvalidNumber, Detail: fmt.Sprintf("%q", raw)}
	}

	if desc.HasPrecision() {
		intDigits, fracDigits := countDigits(normalized)
		if intDigits+fracDigits > desc.Precision {
			return "", &ValueError{
				Field:  field,
				Reason: PrecisionExceeded,
				Detail: fmt.Sprintf("%d significant digits, precision %d", intDigits+fracDigits, desc.Precision),
			}
		}
		if fracDigits > desc.Scale {
			return "", &ValueError{
				Field:  field,
				Reason: ScaleExceeded,
				Detail: fmt.Sprintf("%d fractional digits, scale %d", fracDigits, desc.Scale),
			}
		}
		if intDigits > desc.Precision-desc.Scale {
			return "", &ValueError{
				Field:  field,
				Reason: IntegerDigits,
				Detail: fmt.Sprintf("%d integer digits, room for %d", intDigits, desc.Precision-desc.Scale),
			}
		}
	}

	return normalized, nil
}

// countDigits counts significant integer and fractional digits of a
// normalized numeric string. Leading integer zeros and trailing fractional
// zeros are not significant. Scientific notation counts the mantissa only.
func countDigits(s string) (intDigits, fracDigits int) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		s = s[:i]
	}
	intPart := s
	fracPart := ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	intPart = strings.TrimLeft(intPart, "0")
	fracPart = strings.TrimRight(fracPart, "0")
	return len(intPart), len(fracPart)
}
