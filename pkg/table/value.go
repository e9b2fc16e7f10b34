// Package table provides the in-memory tabular data model used by the
// rule evaluator: a tagged-union scalar Value and an ordered-column Table.
package table

import (
	"encoding/json"
	"strconv"
)

// Kind identifies the type a Value carries.
type Kind int

// Value kinds. A cell is exactly one of these.
const (
	KindNull Kind = iota
	KindNumber
	KindString
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a single cell: null, a number, or a string.
// The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Number returns the numeric content and whether the value is a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the display form of the value. Null renders as the
// empty string, numbers in their shortest round-trip form.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	default:
		return true
	}
}

// MarshalJSON encodes null as JSON null, numbers as JSON numbers and
// strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// nullMarkers are cell contents treated as null during parsing, in
// addition to the empty cell.
var nullMarkers = map[string]struct{}{
	"NULL": {},
	"null": {},
	"NA":   {},
	"N/A":  {},
}

// Parse converts a raw cell into a Value. Empty cells and common null
// markers become null; anything that parses as a float becomes a
// number; everything else is kept as a string.
func Parse(raw string) Value {
	if raw == "" {
		return Null()
	}
	if _, ok := nullMarkers[raw]; ok {
		return Null()
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Number(f)
	}
	return String(raw)
}
