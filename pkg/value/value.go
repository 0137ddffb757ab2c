// Package value defines the neutral argument value passed into a
// message's argument map and threaded through function resolution. It
// mirrors ICU4C's Formattable: a closed set of scalar/aggregate cases
// rather than an open interface, so every built-in function can switch
// on Kind exhaustively.
package value

import (
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Kind tags the case of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt64
	KindDouble
	KindDecimal
	KindDate
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	case KindDouble:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the neutral wrapper around one argument-map entry or
// resolved option value.
type Value struct {
	kind    Kind
	str     string
	i64     int64
	f64     float64
	dec     *big.Rat
	date    time.Time
	arr     []Value
	tag     string
	obj     any
}

// Null returns the null value, used for absent/undeclared operands.
func Null() Value { return Value{kind: KindNull} }

// String wraps a string argument.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int64 wraps an exact integer argument.
func Int64(n int64) Value { return Value{kind: KindInt64, i64: n} }

// Double wraps a binary floating-point argument.
func Double(f float64) Value { return Value{kind: KindDouble, f64: f} }

// Decimal wraps an arbitrary-precision decimal argument. No library in
// the reference corpus provides arbitrary-precision decimals, so this
// case is backed by stdlib math/big.Rat.
func Decimal(r *big.Rat) Value { return Value{kind: KindDecimal, dec: r} }

// Date wraps a date/time argument.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Array wraps an ordered list of values. None of the built-in functions
// accepts an array operand, and an array placeholder with no annotation
// falls back.
func Array(vs []Value) Value { return Value{kind: KindArray, arr: vs} }

// Object wraps an opaque, application-defined value under a string tag
// that a custom function recognizes. The engine never interprets tag
// or data; only a matching Function implementation does.
func Object(tag string, data any) Value { return Value{kind: KindObject, tag: tag, obj: data} }

// Kind reports v's case.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the wrapped string and whether v.Kind() == KindString.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Int64Val returns the wrapped integer and whether v.Kind() == KindInt64.
func (v Value) Int64Val() (int64, bool) { return v.i64, v.kind == KindInt64 }

// DoubleVal returns the wrapped float and whether v.Kind() == KindDouble.
func (v Value) DoubleVal() (float64, bool) { return v.f64, v.kind == KindDouble }

// DecimalVal returns the wrapped rational and whether v.Kind() == KindDecimal.
func (v Value) DecimalVal() (*big.Rat, bool) { return v.dec, v.kind == KindDecimal }

// DateVal returns the wrapped time and whether v.Kind() == KindDate.
func (v Value) DateVal() (time.Time, bool) { return v.date, v.kind == KindDate }

// ArrayVal returns the wrapped slice and whether v.Kind() == KindArray.
func (v Value) ArrayVal() ([]Value, bool) { return v.arr, v.kind == KindArray }

// ObjectVal returns the wrapped tag/data pair and whether
// v.Kind() == KindObject.
func (v Value) ObjectVal() (string, any, bool) { return v.tag, v.obj, v.kind == KindObject }

// AsNumeric reports v's numeric value as a float64, covering the
// int64/double/decimal cases, for functions (like :number) that accept
// any numeric-shaped operand.
func (v Value) AsNumeric() (float64, bool) {
	switch v.kind {
	case KindInt64:
		return float64(v.i64), true
	case KindDouble:
		return v.f64, true
	case KindDecimal:
		if v.dec == nil {
			return 0, false
		}
		f, _ := v.dec.Float64()
		return f, true
	case KindString:
		f, err := strconv.ParseFloat(v.str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsString renders v as a plain string, for option values and for
// functions (like :string) that accept any scalar operand. It is not
// used for fallback text, which is always computed from the source
// expression rather than a resolved value.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindInt64:
		return strconv.FormatInt(v.i64, 10), true
	case KindDouble:
		return strconv.FormatFloat(v.f64, 'g', -1, 64), true
	case KindDecimal:
		if v.dec == nil {
			return "", false
		}
		return v.dec.RatString(), true
	case KindDate:
		return v.date.Format(time.RFC3339), true
	default:
		return "", false
	}
}

func (v Value) String() string {
	if s, ok := v.AsString(); ok {
		return s
	}
	return fmt.Sprintf("<%s>", v.kind)
}
