// Package frame implements the header-carrying table at the center of the
// TFS data model: typed columns, an insertion-ordered header mapping, and
// explicit header-merge semantics for derived frames.
package frame

import (
	"strconv"
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/types"
)

// Value is a tagged union holding one header value. The zero Value is null.
type Value struct {
	kind types.Kind
	str  string
	i    int64
	f    float64
	b    bool
	c    complex128
}

// NullValue returns the null header value.
func NullValue() Value { return Value{kind: types.Null} }

// StringValue returns a string header value.
func StringValue(s string) Value { return Value{kind: types.String, str: s} }

// IntValue returns an integer header value.
func IntValue(i int64) Value { return Value{kind: types.Int, i: i} }

// FloatValue returns a float header value.
func FloatValue(f float64) Value { return Value{kind: types.Float, f: f} }

// BoolValue returns a boolean header value.
func BoolValue(b bool) Value { return Value{kind: types.Bool, b: b} }

// ComplexValue returns a complex header value.
func ComplexValue(c complex128) Value { return Value{kind: types.Complex, c: c} }

// ValueOf builds a Value from a runtime scalar.
func ValueOf(v any) (Value, error) {
	switch types.KindOf(v) {
	case types.Null:
		return NullValue(), nil
	case types.Bool:
		return BoolValue(v.(bool)), nil
	case types.Int:
		return IntValue(toInt64(v)), nil
	case types.Float:
		switch f := v.(type) {
		case float32:
			return FloatValue(float64(f)), nil
		default:
			return FloatValue(v.(float64)), nil
		}
	case types.Complex:
		switch c := v.(type) {
		case complex64:
			return ComplexValue(complex128(c)), nil
		default:
			return ComplexValue(v.(complex128)), nil
		}
	case types.String:
		return StringValue(v.(string)), nil
	}
	return Value{}, &errors.TypeResolutionError{What: "header value"}
}

func toInt64(v any) int64 {
	switch i := v.(type) {
	case int:
		return int64(i)
	case int8:
		return int64(i)
	case int16:
		return int64(i)
	case int32:
		return int64(i)
	case int64:
		return i
	case uint:
		return int64(i)
	case uint8:
		return int64(i)
	case uint16:
		return int64(i)
	case uint32:
		return int64(i)
	case uint64:
		return int64(i)
	}
	return 0
}

// Kind returns the semantic kind of the value.
func (v Value) Kind() types.Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == types.Null || v.kind == types.Invalid }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Complex returns the complex payload.
func (v Value) Complex() complex128 { return v.c }

// Native returns the value as a plain Go scalar, nil for null.
func (v Value) Native() any {
	switch v.kind {
	case types.String:
		return v.str
	case types.Int:
		return v.i
	case types.Float:
		return v.f
	case types.Bool:
		return v.b
	case types.Complex:
		return v.c
	}
	return nil
}

// Accepted boolean literals, matched after case normalization.
var (
	trueLiterals  = map[string]bool{"True": true, "1": true}
	falseLiterals = map[string]bool{"False": true, "0": true}
)

// ParseBool matches a raw literal against the accepted boolean set.
func ParseBool(raw string) (bool, error) {
	normalized := capitalize(raw)
	if trueLiterals[normalized] {
		return true, nil
	}
	if falseLiterals[normalized] {
		return false, nil
	}
	return false, &errors.InvalidBooleanHeaderError{Value: raw}
}

func capitalize(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseComplex parses a TFS complex literal like "1.5+2i" or "3I". Both the
// MAD-NG 'i' and 'I' spellings occur in files; Go's parser wants lowercase.
func ParseComplex(raw string) (complex128, error) {
	return strconv.ParseComplex(strings.ReplaceAll(raw, "I", "i"), 128)
}

// ParseValue casts a raw header literal to the kind declared by tag. The raw
// string is expected to already have its surrounding quotes stripped.
func ParseValue(tag, raw string) (Value, error) {
	kind, err := types.TagToKind(tag)
	if err != nil {
		return Value{}, err
	}
	switch kind {
	case types.Null:
		// the value is null regardless of the literal text
		return NullValue(), nil
	case types.Bool:
		b, err := ParseBool(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case types.Complex:
		c, err := ParseComplex(raw)
		if err != nil {
			return Value{}, err
		}
		return ComplexValue(c), nil
	case types.Int:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, err
		}
		return IntValue(i), nil
	case types.Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	default:
		return StringValue(raw), nil
	}
}
