package model

import (
	"fmt"
	"strconv"
	"time"
)

// ColumnType is the declared type of a column, resolved once at load time
// from the parquet physical and logical/converted types.
type ColumnType int

const (
	TypeInteger ColumnType = iota
	TypeFloat
	TypeBoolean
	TypeString
	TypeTemporal
	TypeCategorical
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	case TypeTemporal:
		return "temporal"
	case TypeCategorical:
		return "categorical"
	}
	return "unknown"
}

// IsNumeric reports whether values of this type support arithmetic.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindTemporal
)

// Value is a single cell: one of integer, float, boolean, string, temporal,
// or the explicit null marker. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	t    time.Time
}

// Null is the explicit missing-value marker.
func Null() Value { return Value{} }

func Integer(i int64) Value     { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value     { return Value{kind: KindFloat, f: f} }
func Boolean(b bool) Value      { return Value{kind: KindBoolean, b: b} }
func String(s string) Value     { return Value{kind: KindString, s: s} }
func Temporal(t time.Time) Value { return Value{kind: KindTemporal, t: t} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer payload; zero for other kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload, widening integers so numeric consumers
// can treat both uniformly.
func (v Value) Float() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Bool() bool      { return v.b }
func (v Value) Str() string     { return v.s }
func (v Value) Time() time.Time { return v.t }

// Display formats the value for on-screen rendering. Null renders as "-",
// matching how the rest of the UI marks missing data.
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return "-"
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindTemporal:
		return v.t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", v)
}

// Less orders two non-null values of the same kind. Used by the summary
// engine for min/max tracking; mixed or null operands never compare.
func (v Value) Less(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i < other.i
	case KindFloat:
		return v.f < other.f
	case KindString:
		return v.s < other.s
	case KindTemporal:
		return v.t.Before(other.t)
	case KindBoolean:
		return !v.b && other.b
	}
	return false
}
