package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/types"
)

// Column is a named, homogeneous sequence of one semantic type. Rows are
// positionally aligned across the columns of a frame.
type Column interface {
	// Name returns the column name.
	Name() string
	// Kind returns the semantic type of the column.
	Kind() types.Kind
	// Len returns the number of rows.
	Len() int
	// Value returns the cell at row i as a plain Go scalar, nil for null.
	Value(i int) any
	// IsNull reports whether the cell at row i is null.
	IsNull(i int) bool
	// AppendRaw parses one data token and appends it. The token never
	// carries the null sentinel; the codec routes that to AppendNull.
	AppendRaw(tok string) error
	// AppendNull appends a missing value. Errors for kinds that cannot
	// represent one.
	AppendNull() error
	// Append appends a runtime scalar of the column's kind.
	Append(v any) error
	// Select returns a new column holding the given rows, in order.
	Select(rows []int) Column
	// Renamed returns a copy of the column under a new name.
	Renamed(name string) Column
}

// NewEmptyColumn returns a zero-row column of the given kind, ready for the
// codec's builders. Object columns hold untyped cells and only come from
// in-memory construction.
func NewEmptyColumn(name string, kind types.Kind) (Column, error) {
	switch kind {
	case types.String:
		return &StringColumn{name: name}, nil
	case types.Int:
		return &IntColumn{name: name}, nil
	case types.Float:
		return &FloatColumn{name: name}, nil
	case types.Bool:
		return &BoolColumn{name: name}, nil
	case types.Complex:
		return &ComplexColumn{name: name}, nil
	case types.Object:
		return &ObjectColumn{name: name}, nil
	}
	return nil, &errors.TypeResolutionError{What: fmt.Sprintf("column %q of kind %s", name, kind)}
}

// NewColumn infers a typed column from runtime values. Values that classify
// to no single scalar kind land in an object column, which validation will
// reject before any write.
func NewColumn(name string, values []any) Column {
	kind := types.Invalid
	for _, v := range values {
		k := types.KindOf(v)
		if k == types.Null {
			continue
		}
		if kind == types.Invalid {
			kind = k
			continue
		}
		if kind != k {
			kind = types.Object
			break
		}
	}
	if kind == types.Invalid {
		kind = types.Object
	}
	col, err := NewEmptyColumn(name, kind)
	if err != nil {
		col = &ObjectColumn{name: name}
	}
	for _, v := range values {
		if v == nil {
			if nerr := col.AppendNull(); nerr != nil {
				col = objectFallback(name, values)
				break
			}
			continue
		}
		if aerr := col.Append(v); aerr != nil {
			col = objectFallback(name, values)
			break
		}
	}
	return col
}

func objectFallback(name string, values []any) Column {
	out := &ObjectColumn{name: name, vals: make([]any, len(values))}
	copy(out.vals, values)
	return out
}

// StringColumn stores text cells with an explicit null bitmap: an empty
// string and a null never collapse into the same representation.
type StringColumn struct {
	name  string
	vals  []string
	nulls []bool
}

// NewStringColumn builds a string column from values, none null.
func NewStringColumn(name string, vals []string) *StringColumn {
	c := &StringColumn{name: name, vals: append([]string(nil), vals...)}
	c.nulls = make([]bool, len(c.vals))
	return c
}

func (c *StringColumn) Name() string     { return c.name }
func (c *StringColumn) Kind() types.Kind { return types.String }
func (c *StringColumn) Len() int         { return len(c.vals) }

func (c *StringColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.vals[i]
}

func (c *StringColumn) IsNull(i int) bool { return c.nulls[i] }

// At returns the cell text and whether it is null.
func (c *StringColumn) At(i int) (string, bool) { return c.vals[i], c.nulls[i] }

func (c *StringColumn) AppendRaw(tok string) error {
	c.vals = append(c.vals, tok)
	c.nulls = append(c.nulls, false)
	return nil
}

func (c *StringColumn) AppendNull() error {
	c.vals = append(c.vals, "")
	c.nulls = append(c.nulls, true)
	return nil
}

func (c *StringColumn) Append(v any) error {
	s, ok := v.(string)
	if !ok {
		return errors.Wrapf(errors.ErrValidation, "column %q holds strings, got %T", c.name, v)
	}
	return c.AppendRaw(s)
}

func (c *StringColumn) Select(rows []int) Column {
	out := &StringColumn{name: c.name}
	for _, r := range rows {
		out.vals = append(out.vals, c.vals[r])
		out.nulls = append(out.nulls, c.nulls[r])
	}
	return out
}

func (c *StringColumn) Renamed(name string) Column {
	return &StringColumn{name: name, vals: c.vals, nulls: c.nulls}
}

// IntColumn stores 64-bit integer cells. Integers cannot hold a null.
type IntColumn struct {
	name string
	vals []int64
}

// NewIntColumn builds an integer column.
func NewIntColumn(name string, vals []int64) *IntColumn {
	return &IntColumn{name: name, vals: append([]int64(nil), vals...)}
}

func (c *IntColumn) Name() string      { return c.name }
func (c *IntColumn) Kind() types.Kind  { return types.Int }
func (c *IntColumn) Len() int          { return len(c.vals) }
func (c *IntColumn) Value(i int) any   { return c.vals[i] }
func (c *IntColumn) IsNull(i int) bool { return false }

// At returns the cell at row i.
func (c *IntColumn) At(i int) int64 { return c.vals[i] }

func (c *IntColumn) AppendRaw(tok string) error {
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "column %q", c.name)
	}
	c.vals = append(c.vals, v)
	return nil
}

func (c *IntColumn) AppendNull() error {
	return errors.Wrapf(errors.ErrFormat, "integer column %q can not hold a nil value", c.name)
}

func (c *IntColumn) Append(v any) error {
	if types.KindOf(v) != types.Int {
		return errors.Wrapf(errors.ErrValidation, "column %q holds integers, got %T", c.name, v)
	}
	c.vals = append(c.vals, toInt64(v))
	return nil
}

func (c *IntColumn) Select(rows []int) Column {
	out := &IntColumn{name: c.name}
	for _, r := range rows {
		out.vals = append(out.vals, c.vals[r])
	}
	return out
}

func (c *IntColumn) Renamed(name string) Column {
	return &IntColumn{name: name, vals: c.vals}
}

// FloatColumn stores double-precision cells; nulls are NaN.
type FloatColumn struct {
	name string
	vals []float64
}

// NewFloatColumn builds a float column.
func NewFloatColumn(name string, vals []float64) *FloatColumn {
	return &FloatColumn{name: name, vals: append([]float64(nil), vals...)}
}

func (c *FloatColumn) Name() string      { return c.name }
func (c *FloatColumn) Kind() types.Kind  { return types.Float }
func (c *FloatColumn) Len() int          { return len(c.vals) }
func (c *FloatColumn) Value(i int) any   { return c.vals[i] }
func (c *FloatColumn) IsNull(i int) bool { return math.IsNaN(c.vals[i]) }

// At returns the cell at row i.
func (c *FloatColumn) At(i int) float64 { return c.vals[i] }

func (c *FloatColumn) AppendRaw(tok string) error {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return errors.Wrapf(err, "column %q", c.name)
	}
	c.vals = append(c.vals, v)
	return nil
}

func (c *FloatColumn) AppendNull() error {
	c.vals = append(c.vals, math.NaN())
	return nil
}

func (c *FloatColumn) Append(v any) error {
	switch f := v.(type) {
	case float64:
		c.vals = append(c.vals, f)
	case float32:
		c.vals = append(c.vals, float64(f))
	default:
		return errors.Wrapf(errors.ErrValidation, "column %q holds floats, got %T", c.name, v)
	}
	return nil
}

func (c *FloatColumn) Select(rows []int) Column {
	out := &FloatColumn{name: c.name}
	for _, r := range rows {
		out.vals = append(out.vals, c.vals[r])
	}
	return out
}

func (c *FloatColumn) Renamed(name string) Column {
	return &FloatColumn{name: name, vals: c.vals}
}

// BoolColumn stores boolean cells. Booleans cannot hold a null.
type BoolColumn struct {
	name string
	vals []bool
}

// NewBoolColumn builds a boolean column.
func NewBoolColumn(name string, vals []bool) *BoolColumn {
	return &BoolColumn{name: name, vals: append([]bool(nil), vals...)}
}

func (c *BoolColumn) Name() string      { return c.name }
func (c *BoolColumn) Kind() types.Kind  { return types.Bool }
func (c *BoolColumn) Len() int          { return len(c.vals) }
func (c *BoolColumn) Value(i int) any   { return c.vals[i] }
func (c *BoolColumn) IsNull(i int) bool { return false }

// At returns the cell at row i.
func (c *BoolColumn) At(i int) bool { return c.vals[i] }

func (c *BoolColumn) AppendRaw(tok string) error {
	v, err := ParseBool(tok)
	if err != nil {
		return errors.Wrapf(err, "column %q", c.name)
	}
	c.vals = append(c.vals, v)
	return nil
}

func (c *BoolColumn) AppendNull() error {
	return errors.Wrapf(errors.ErrFormat, "boolean column %q can not hold a nil value", c.name)
}

func (c *BoolColumn) Append(v any) error {
	b, ok := v.(bool)
	if !ok {
		return errors.Wrapf(errors.ErrValidation, "column %q holds booleans, got %T", c.name, v)
	}
	c.vals = append(c.vals, b)
	return nil
}

func (c *BoolColumn) Select(rows []int) Column {
	out := &BoolColumn{name: c.name}
	for _, r := range rows {
		out.vals = append(out.vals, c.vals[r])
	}
	return out
}

func (c *BoolColumn) Renamed(name string) Column {
	return &BoolColumn{name: name, vals: c.vals}
}

// ComplexColumn stores 128-bit complex cells; nulls are NaN+NaNi.
type ComplexColumn struct {
	name string
	vals []complex128
}

// NewComplexColumn builds a complex column.
func NewComplexColumn(name string, vals []complex128) *ComplexColumn {
	return &ComplexColumn{name: name, vals: append([]complex128(nil), vals...)}
}

func (c *ComplexColumn) Name() string     { return c.name }
func (c *ComplexColumn) Kind() types.Kind { return types.Complex }
func (c *ComplexColumn) Len() int         { return len(c.vals) }
func (c *ComplexColumn) Value(i int) any  { return c.vals[i] }

func (c *ComplexColumn) IsNull(i int) bool {
	return math.IsNaN(real(c.vals[i])) && math.IsNaN(imag(c.vals[i]))
}

// At returns the cell at row i.
func (c *ComplexColumn) At(i int) complex128 { return c.vals[i] }

func (c *ComplexColumn) AppendRaw(tok string) error {
	v, err := ParseComplex(tok)
	if err != nil {
		return errors.Wrapf(err, "column %q", c.name)
	}
	c.vals = append(c.vals, v)
	return nil
}

func (c *ComplexColumn) AppendNull() error {
	c.vals = append(c.vals, complex(math.NaN(), math.NaN()))
	return nil
}

func (c *ComplexColumn) Append(v any) error {
	switch x := v.(type) {
	case complex128:
		c.vals = append(c.vals, x)
	case complex64:
		c.vals = append(c.vals, complex128(x))
	default:
		return errors.Wrapf(errors.ErrValidation, "column %q holds complex values, got %T", c.name, v)
	}
	return nil
}

func (c *ComplexColumn) Select(rows []int) Column {
	out := &ComplexColumn{name: c.name}
	for _, r := range rows {
		out.vals = append(out.vals, c.vals[r])
	}
	return out
}

func (c *ComplexColumn) Renamed(name string) Column {
	return &ComplexColumn{name: name, vals: c.vals}
}

// ObjectColumn holds untyped cells. It exists so frames built directly in
// memory can carry values the type system rejects, for validation to report
// on; it maps to no type tag and never reaches a file.
type ObjectColumn struct {
	name string
	vals []any
}

// NewObjectColumn builds an object column from arbitrary values.
func NewObjectColumn(name string, vals []any) *ObjectColumn {
	return &ObjectColumn{name: name, vals: append([]any(nil), vals...)}
}

func (c *ObjectColumn) Name() string      { return c.name }
func (c *ObjectColumn) Kind() types.Kind  { return types.Object }
func (c *ObjectColumn) Len() int          { return len(c.vals) }
func (c *ObjectColumn) Value(i int) any   { return c.vals[i] }
func (c *ObjectColumn) IsNull(i int) bool { return c.vals[i] == nil }

func (c *ObjectColumn) AppendRaw(tok string) error {
	return errors.Wrapf(errors.ErrFormat, "object column %q can not parse data tokens", c.name)
}

func (c *ObjectColumn) AppendNull() error {
	c.vals = append(c.vals, nil)
	return nil
}

func (c *ObjectColumn) Append(v any) error {
	c.vals = append(c.vals, v)
	return nil
}

func (c *ObjectColumn) Select(rows []int) Column {
	out := &ObjectColumn{name: c.name}
	for _, r := range rows {
		out.vals = append(out.vals, c.vals[r])
	}
	return out
}

func (c *ObjectColumn) Renamed(name string) Column {
	return &ObjectColumn{name: name, vals: c.vals}
}

// FormatCell renders one cell of a column in its on-disk form, without
// padding. Strings are not quoted here; the formatter decides quoting.
func FormatCell(c Column, i int) (string, error) {
	if c.IsNull(i) && c.Kind() == types.String {
		return "nil", nil
	}
	switch col := c.(type) {
	case *StringColumn:
		s, _ := col.At(i)
		return s, nil
	case *IntColumn:
		return strconv.FormatInt(col.At(i), 10), nil
	case *FloatColumn:
		return strconv.FormatFloat(col.At(i), 'g', -1, 64), nil
	case *BoolColumn:
		return strconv.FormatBool(col.At(i)), nil
	case *ComplexColumn:
		return FormatComplex(col.At(i)), nil
	}
	return "", &errors.TypeResolutionError{What: fmt.Sprintf("column %q", c.Name())}
}

// FormatComplex renders a complex value as "a+bi", the spelling MAD-NG
// accepts, without the parentheses Go's formatter adds.
func FormatComplex(c complex128) string {
	s := strconv.FormatComplex(c, 'g', -1, 128)
	return strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
}
