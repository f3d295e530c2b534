// Package oratype parses declared Oracle column types into structured
// descriptors. Parsing is forgiving: unparseable modifiers are ignored and
// the base type family wins, so there is no failure mode.
package oratype

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the Oracle type family of a column.
type Kind int

const (
	KindNumber Kind = iota
	KindVarchar
	KindChar
	KindDate
	KindTimestamp
	KindClob
	KindBlob
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "NUMBER"
	case KindVarchar:
		return "VARCHAR2"
	case KindChar:
		return "CHAR"
	case KindDate:
		return "DATE"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindClob:
		return "CLOB"
	case KindBlob:
		return "BLOB"
	default:
		return "OTHER"
	}
}

// LengthUnit is the length semantics of a character column.
type LengthUnit int

const (
	UnitByte LengthUnit = iota
	UnitChar
)

// Descriptor is the parsed form of a declared column type. Precision/Scale
// apply to NUMBER, MaxLength/Unit to VARCHAR2 and CHAR; zero values mean
// "not declared". Raw always carries the uppercased declared string.
type Descriptor struct {
	Kind      Kind
	Precision int
	Scale     int
	MaxLength int
	Unit      LengthUnit
	Raw       string
}

// HasPrecision reports whether a NUMBER column declared precision.
func (d Descriptor) HasPrecision() bool { return d.Kind == KindNumber && d.Precision > 0 }

// HasMaxLength reports whether a character column declared a length.
func (d Descriptor) HasMaxLength() bool {
	return (d.Kind == KindVarchar || d.Kind == KindChar) && d.MaxLength > 0
}

var (
	numberRe  = regexp.MustCompile(`^NUMBER\s*\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\)$`)
	varcharRe = regexp.MustCompile(`^(VARCHAR2|VARCHAR|CHAR)\s*\(\s*(\d+)\s*(BYTE|CHAR)?\s*\)$`)
)

// Parse maps a declared type string to a Descriptor. Matching is
// case-insensitive; anything unrecognized becomes KindOther with the
// uppercased raw name preserved.
func Parse(declared string) Descriptor {
	raw := strings.ToUpper(strings.TrimSpace(declared))
	d := Descriptor{Raw: raw}

	if m := numberRe.FindStringSubmatch(raw); m != nil {
		d.Kind = KindNumber
		d.Precision, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			d.Scale, _ = strconv.Atoi(m[2])
		}
		return d
	}

	if m := varcharRe.FindStringSubmatch(raw); m != nil {
		if m[1] == "CHAR" {
			d.Kind = KindChar
		} else {
			d.Kind = KindVarchar
		}
		d.MaxLength, _ = strconv.Atoi(m[2])
		if m[3] == "CHAR" {
			d.Unit = UnitChar
		} else {
			d.Unit = UnitByte
		}
		return d
	}

	// TIMESTAMP, TIMESTAMP(6), TIMESTAMP WITH TIME ZONE all map to the same
	// family; precision modifiers are ignored.
	if strings.HasPrefix(raw, "TIMESTAMP") {
		d.Kind = KindTimestamp
		return d
	}

	switch raw {
	case "NUMBER":
		d.Kind = KindNumber
	case "VARCHAR2", "VARCHAR":
		d.Kind = KindVarchar
	case "CHAR":
		d.Kind = KindChar
	case "DATE":
		d.Kind = KindDate
	case "CLOB":
		d.Kind = KindClob
	case "BLOB":
		d.Kind = KindBlob
	default:
		d.Kind = KindOther
	}
	return d
}
