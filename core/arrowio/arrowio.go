// Package arrowio bridges frames to the Arrow IPC file format so tables can
// move into columnar tooling without going through text. Headers travel as
// schema metadata; complex columns are encoded as {re,im} float64 structs
// since Arrow has no complex primitive.
package arrowio

import (
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/types"
)

// complexType is the struct encoding used for complex columns.
var complexType = arrow.StructOf(
	arrow.Field{Name: "re", Type: arrow.PrimitiveTypes.Float64},
	arrow.Field{Name: "im", Type: arrow.PrimitiveTypes.Float64},
)

// headerMetaPrefix namespaces header entries inside the schema metadata so
// they do not collide with keys other writers may add.
const headerMetaPrefix = "tfs.header."

// Write stores the frame as an Arrow IPC file. The row index, when present,
// becomes the leading column under its marker-prefixed name so a later Read
// can restore it.
func Write(path string, f *frame.Frame) error {
	cols := f.Columns()
	if idx := f.Index(); idx != nil {
		cols = append([]frame.Column{idx.Renamed(f.MaterializedIndexName(""))}, cols...)
	}

	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		dt, err := arrowType(c.Kind())
		if err != nil {
			return err
		}
		fields[i] = arrow.Field{Name: c.Name(), Type: dt, Nullable: true}
	}
	md := headerMetadata(f.Headers())
	schema := arrow.NewSchema(fields, &md)

	mem := memory.NewGoAllocator()
	arrs := make([]arrow.Array, len(cols))
	for i, c := range cols {
		arr, err := buildArray(mem, c)
		if err != nil {
			return err
		}
		defer arr.Release()
		arrs[i] = arr
	}
	rec := array.NewRecord(schema, arrs, int64(f.NumRows()))
	defer rec.Release()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := ipc.NewFileWriter(out, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		out.Close()
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		out.Close()
		return err
	}
	if err := w.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Read loads an Arrow IPC file back into a frame, restoring headers from the
// schema metadata and promoting a marker-prefixed index column.
func Read(path string) (*frame.Frame, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r, err := ipc.NewFileReader(in, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	schema := r.Schema()
	builders := make([]frame.Column, len(schema.Fields()))
	for i, field := range schema.Fields() {
		kind, err := frameKind(field.Type)
		if err != nil {
			return nil, err
		}
		col, err := frame.NewEmptyColumn(field.Name, kind)
		if err != nil {
			return nil, err
		}
		builders[i] = col
	}

	for n := 0; n < r.NumRecords(); n++ {
		rec, err := r.RecordAt(n)
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(rec.NumCols()); i++ {
			if err := appendArray(builders[i], rec.Column(i)); err != nil {
				return nil, err
			}
		}
	}

	f, err := frame.New(builders...)
	if err != nil {
		return nil, err
	}
	f.SetHeaders(headersFromMetadata(schema.Metadata()))
	f.PromoteMarkedIndex()
	return f, nil
}

func arrowType(k types.Kind) (arrow.DataType, error) {
	switch k {
	case types.String:
		return arrow.BinaryTypes.String, nil
	case types.Int:
		return arrow.PrimitiveTypes.Int64, nil
	case types.Float:
		return arrow.PrimitiveTypes.Float64, nil
	case types.Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case types.Complex:
		return complexType, nil
	}
	return nil, &errors.TypeResolutionError{What: fmt.Sprintf("kind %s has no Arrow mapping", k)}
}

func frameKind(dt arrow.DataType) (types.Kind, error) {
	switch dt.ID() {
	case arrow.STRING:
		return types.String, nil
	case arrow.INT64:
		return types.Int, nil
	case arrow.FLOAT64:
		return types.Float, nil
	case arrow.BOOL:
		return types.Bool, nil
	case arrow.STRUCT:
		if arrow.TypeEqual(dt, complexType) {
			return types.Complex, nil
		}
	}
	return types.Invalid, &errors.TypeResolutionError{What: fmt.Sprintf("Arrow type %s", dt)}
}

func buildArray(mem memory.Allocator, c frame.Column) (arrow.Array, error) {
	n := c.Len()
	switch col := c.(type) {
	case *frame.StringColumn:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			if col.IsNull(i) {
				b.AppendNull()
				continue
			}
			s, _ := col.At(i)
			b.Append(s)
		}
		return b.NewArray(), nil
	case *frame.IntColumn:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(col.At(i))
		}
		return b.NewArray(), nil
	case *frame.FloatColumn:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(col.At(i))
		}
		return b.NewArray(), nil
	case *frame.BoolColumn:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			b.Append(col.At(i))
		}
		return b.NewArray(), nil
	case *frame.ComplexColumn:
		b := array.NewStructBuilder(mem, complexType)
		defer b.Release()
		re := b.FieldBuilder(0).(*array.Float64Builder)
		im := b.FieldBuilder(1).(*array.Float64Builder)
		for i := 0; i < n; i++ {
			b.Append(true)
			v := col.At(i)
			re.Append(real(v))
			im.Append(imag(v))
		}
		return b.NewArray(), nil
	}
	return nil, &errors.TypeResolutionError{What: fmt.Sprintf("column %q", c.Name())}
}

func appendArray(dst frame.Column, arr arrow.Array) error {
	n := arr.Len()
	switch a := arr.(type) {
	case *array.String:
		for i := 0; i < n; i++ {
			if a.IsNull(i) {
				dst.AppendNull()
				continue
			}
			if err := dst.Append(a.Value(i)); err != nil {
				return err
			}
		}
	case *array.Int64:
		for i := 0; i < n; i++ {
			if err := dst.Append(a.Value(i)); err != nil {
				return err
			}
		}
	case *array.Float64:
		for i := 0; i < n; i++ {
			if a.IsNull(i) {
				dst.AppendNull()
				continue
			}
			if err := dst.Append(a.Value(i)); err != nil {
				return err
			}
		}
	case *array.Boolean:
		for i := 0; i < n; i++ {
			if err := dst.Append(a.Value(i)); err != nil {
				return err
			}
		}
	case *array.Struct:
		re := a.Field(0).(*array.Float64)
		im := a.Field(1).(*array.Float64)
		for i := 0; i < n; i++ {
			if err := dst.Append(complex(re.Value(i), im.Value(i))); err != nil {
				return err
			}
		}
	default:
		return &errors.TypeResolutionError{What: fmt.Sprintf("Arrow array %s", arr.DataType())}
	}
	return nil
}

// headerMetadata renders every header entry as "tag literal" under a
// namespaced key, in insertion order.
func headerMetadata(headers *frame.Headers) arrow.Metadata {
	var keys, vals []string
	for _, name := range headers.Keys() {
		v, _ := headers.Get(name)
		tag, err := types.KindToTag(v.Kind())
		if err != nil {
			continue
		}
		keys = append(keys, headerMetaPrefix+name)
		vals = append(vals, tag+" "+headerString(v))
	}
	return arrow.NewMetadata(keys, vals)
}

func headerString(v frame.Value) string {
	switch v.Kind() {
	case types.String:
		return v.Str()
	case types.Int:
		return fmt.Sprintf("%d", v.Int())
	case types.Float:
		return fmt.Sprintf("%g", v.Float())
	case types.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case types.Complex:
		return frame.FormatComplex(v.Complex())
	}
	return "nil"
}

func headersFromMetadata(md arrow.Metadata) *frame.Headers {
	headers := frame.NewHeaders()
	keys := md.Keys()
	vals := md.Values()
	for i, key := range keys {
		if !strings.HasPrefix(key, headerMetaPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, headerMetaPrefix)
		tag, literal, _ := strings.Cut(vals[i], " ")
		v, err := frame.ParseValue(tag, literal)
		if err != nil {
			// metadata we wrote ourselves should always parse; keep the
			// raw text rather than dropping the entry
			v = frame.StringValue(vals[i])
		}
		_ = headers.Set(name, v)
	}
	return headers
}
