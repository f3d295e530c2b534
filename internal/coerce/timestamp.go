package coerce

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// The format matchers run in priority order; the first one that accepts the
// input wins. Keeping them in a list makes new formats additive.
var timestampMatchers = []struct {
	name string
	try  func(string) (string, bool)
}{
	{"iso8601", matchISO8601},
	{"comma fraction", matchCommaFraction},
	{"explicit layouts", matchExplicitLayouts},
	{"am/pm", matchAMPM},
	{"permissive", matchPermissive},
}

// FormatTimestamp converts a date/time cell into an Oracle TO_TIMESTAMP or
// TO_TIMESTAMP_TZ call with an explicit format mask, so the emitted SQL
// never depends on session NLS settings.
func FormatTimestamp(raw string) (string, error) {
	for _, m := range timestampMatchers {
		if out, ok := m.try(raw); ok {
			return out, nil
		}
	}
	return "", errors.New("no timestamp format matched")
}

// emitTimestamp renders TO_TIMESTAMP with the canonical mask, appending a
// fractional-seconds component only when the input carried one.
func emitTimestamp(t time.Time, frac string) string {
	base := t.Format("2006-01-02 15:04:05")
	mask := "YYYY-MM-DD HH24:MI:SS"
	if frac != "" {
		base += "." + frac
		mask += fmt.Sprintf(".FF%d", len(frac))
	}
	return fmt.Sprintf("TO_TIMESTAMP('%s', '%s')", base, mask)
}

// emitTimestampTZ renders TO_TIMESTAMP_TZ carrying an explicit +HH:MM zone
// offset.
func emitTimestampTZ(t time.Time, frac, offset string) string {
	base := t.Format("2006-01-02 15:04:05")
	mask := "YYYY-MM-DD HH24:MI:SS"
	if frac != "" {
		base += "." + frac
		mask += fmt.Sprintf(".FF%d", len(frac))
	}
	return fmt.Sprintf("TO_TIMESTAMP_TZ('%s %s', '%s TZH:TZM')", base, offset, mask)
}

var iso8601Re = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2})([T ])(\d{2}:\d{2}:\d{2})(?:[.,](\d{1,9}))?\s*(Z|[+-]\d{2}:?\d{2})?$`)

// matchISO8601 handles timestamps that are distinctly ISO-8601: a T
// separator, or an explicit Z/offset designator. Space-separated input
// without a zone belongs to the later matchers, which emit the zoneless
// TO_TIMESTAMP form. A T-separated input without a zone is pinned to the
// local offset at that instant rather than left to the session.
func matchISO8601(raw string) (string, bool) {
	m := iso8601Re.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	if m[2] != "T" && m[5] == "" {
		return "", false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", m[1]+" "+m[3], time.Local)
	if err != nil {
		return "", false
	}
	offset := normalizeOffset(m[5], t)
	return emitTimestampTZ(t, m[4], offset), true
}

// normalizeOffset canonicalizes a zone designator to +HH:MM. Z means UTC;
// an absent designator resolves to the local offset of the parsed instant.
func normalizeOffset(designator string, t time.Time) string {
	switch {
	case designator == "Z":
		return "+00:00"
	case designator == "":
		return t.Format("-07:00")
	case strings.Contains(designator, ":"):
		return designator
	default:
		return designator[:3] + ":" + designator[3:]
	}
}

var commaFractionRe = regexp.MustCompile(
	`^(\d{1,4}[-/.]\d{1,2}[-/.]\d{2,4}) (\d{1,2})[.:](\d{2})[.:](\d{2}),(\d{1,9})$`)

var commaFractionDateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
}

// matchCommaFraction handles the comma-delimited fractional form
// (DD-MM-YYYY HH.mm.ss,fff). Dot-separated time fields are normalized to
// colons before the date portion is matched against the explicit layouts.
func matchCommaFraction(raw string) (string, bool) {
	m := commaFractionRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	for _, layout := range commaFractionDateLayouts {
		d, err := time.Parse(layout, m[1])
		if err != nil {
			continue
		}
		clock := fmt.Sprintf("%s:%s:%s", pad2(m[2]), m[3], m[4])
		t, err := time.Parse("2006-01-02 15:04:05", d.Format("2006-01-02")+" "+clock)
		if err != nil {
			return "", false
		}
		return emitTimestamp(t, m[5]), true
	}
	return "", false
}

// explicitLayouts are unambiguous formats tried in a fixed priority order.
// Day-first variants precede month-first ones; a layout only matches input
// whose components are valid for it, so 25/03/2020 falls through day-first
// and 03/25/2020 falls through to month-first.
var explicitLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"01-02-2006 15:04:05",
	"01-02-2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02-Jan-2006 15:04:05",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02-01-06",
	"02/01/06",
}

func matchExplicitLayouts(raw string) (string, bool) {
	for _, layout := range explicitLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return emitTimestamp(t, ""), true
		}
	}
	return "", false
}

var amPMRe = regexp.MustCompile(
	`^(\d{1,2})[-/](\d{1,2})[-/](\d{2,4}) +(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\.(\d{1,9}))? *([AaPp])\.?[Mm]\.?$`)

// matchAMPM handles 12-hour-clock input. When both leading fields could be
// a month the ordering is ambiguous and month-first wins.
func matchAMPM(raw string) (string, bool) {
	m := amPMRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	month, day := first, second
	if first > 12 {
		month, day = second, first
	}

	hour, _ := strconv.Atoi(m[4])
	if hour < 1 || hour > 12 {
		return "", false
	}
	pm := m[8] == "p" || m[8] == "P"
	if hour == 12 {
		if !pm {
			hour = 0
		}
	} else if pm {
		hour += 12
	}

	minute, _ := strconv.Atoi(m[5])
	sec := 0
	if m[6] != "" {
		sec, _ = strconv.Atoi(m[6])
	}
	if month < 1 || month > 12 || minute > 59 || sec > 59 {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return emitTimestamp(t, m[7]), true
}

// matchPermissive is the last resort: general date-time inference over
// anything the explicit matchers rejected.
func matchPermissive(raw string) (string, bool) {
	t, err := dateparse.ParseLocal(raw)
	if err != nil {
		return "", false
	}
	frac := ""
	if ns := t.Nanosecond(); ns > 0 {
		frac = strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
	}
	return emitTimestamp(t, frac), true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
