package frame

import (
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
)

// IndexMarker is the fixed prefix identifying the row index column on disk.
const IndexMarker = "INDEX&&&"

// Frame pairs typed columns with an ordered header mapping and an optional
// row index. The header mapping and the column set are independent: the same
// name may appear in both, and Resolve checks columns first.
type Frame struct {
	headers *Headers
	columns []Column
	index   Column // nil when the frame has no designated row index
}

// New builds a frame over the given columns with empty headers. All columns
// must have the same length. Duplicate column names are representable (the
// validation engine reports them under the configured policy).
func New(columns ...Column) (*Frame, error) {
	f := &Frame{headers: NewHeaders()}
	for _, c := range columns {
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Headers returns the header mapping, which may be nil for frames created
// without header capability.
func (f *Frame) Headers() *Headers { return f.headers }

// SetHeaders replaces the header mapping. A nil mapping marks the frame as
// having no header capability.
func (f *Frame) SetHeaders(h *Headers) { f.headers = h }

// Columns returns the ordinary columns in order, excluding the index.
func (f *Frame) Columns() []Column {
	out := make([]Column, len(f.columns))
	copy(out, f.columns)
	return out
}

// ColumnNames returns the ordinary column names in order.
func (f *Frame) ColumnNames() []string {
	out := make([]string, len(f.columns))
	for i, c := range f.columns {
		out[i] = c.Name()
	}
	return out
}

// Column returns the first column with the given name.
func (f *Frame) Column(name string) (Column, bool) {
	for _, c := range f.columns {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// NumRows returns the row count, zero for a frame without columns or index.
func (f *Frame) NumRows() int {
	if len(f.columns) > 0 {
		return f.columns[0].Len()
	}
	if f.index != nil {
		return f.index.Len()
	}
	return 0
}

// NumCols returns the number of ordinary columns.
func (f *Frame) NumCols() int { return len(f.columns) }

// AddColumn appends a column, enforcing row alignment.
func (f *Frame) AddColumn(c Column) error {
	if len(f.columns) > 0 && c.Len() != f.NumRows() {
		return errors.Wrapf(errors.ErrValidation,
			"column %q has %d rows, frame has %d", c.Name(), c.Len(), f.NumRows())
	}
	f.columns = append(f.columns, c)
	return nil
}

// DropColumn removes the first column with the given name.
func (f *Frame) DropColumn(name string) bool {
	for i, c := range f.columns {
		if c.Name() == name {
			f.columns = append(f.columns[:i], f.columns[i+1:]...)
			return true
		}
	}
	return false
}

// Index returns the row index column, nil if none is designated.
func (f *Frame) Index() Column { return f.index }

// SetIndexColumn designates col as the row index without touching the
// ordinary columns.
func (f *Frame) SetIndexColumn(col Column) { f.index = col }

// PromoteIndex removes the named column from the ordinary set and designates
// it as the row index.
func (f *Frame) PromoteIndex(name string) error {
	col, ok := f.Column(name)
	if !ok {
		return &errors.KeyNotFoundError{Key: name}
	}
	f.DropColumn(name)
	f.index = col
	return nil
}

// PromoteMarkedIndex looks for a single column carrying the index marker
// prefix, strips the marker from its name and promotes it. An empty
// remainder leaves the index unnamed. Reports whether a promotion happened.
func (f *Frame) PromoteMarkedIndex() bool {
	var marked []string
	for _, c := range f.columns {
		if strings.HasPrefix(c.Name(), IndexMarker) {
			marked = append(marked, c.Name())
		}
	}
	if len(marked) != 1 {
		return false
	}
	onDisk := marked[0]
	col, _ := f.Column(onDisk)
	f.DropColumn(onDisk)
	f.index = col.Renamed(strings.TrimPrefix(onDisk, IndexMarker))
	return true
}

// MaterializedIndexName returns the on-disk name for the index column when it
// is written back as data: the caller-given name if any, otherwise the marker
// prefix plus the index's own name.
func (f *Frame) MaterializedIndexName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	name := ""
	if f.index != nil {
		name = f.index.Name()
	}
	return IndexMarker + name
}

// ResolveSource says where a name lookup landed.
type ResolveSource int

const (
	// ResolvedNone means neither a column nor a header matched.
	ResolvedNone ResolveSource = iota
	// ResolvedColumn means the name matched a column.
	ResolvedColumn
	// ResolvedHeader means the name missed the columns and matched a header.
	ResolvedHeader
)

// Resolved is the tagged result of a frame name lookup.
type Resolved struct {
	Source ResolveSource
	Column Column
	Header Value
}

// Resolve looks a name up against the columns first, then falls back to the
// header mapping. A double miss returns a KeyNotFoundError.
func (f *Frame) Resolve(name string) (Resolved, error) {
	if col, ok := f.Column(name); ok {
		return Resolved{Source: ResolvedColumn, Column: col}, nil
	}
	if v, ok := f.headers.Get(name); ok {
		return Resolved{Source: ResolvedHeader, Header: v}, nil
	}
	return Resolved{}, &errors.KeyNotFoundError{Key: name}
}

// Clone returns a deep-enough copy: column data is shared (columns are
// append-only once built), headers are copied.
func (f *Frame) Clone() *Frame {
	out := &Frame{headers: f.headers.Clone(), index: f.index}
	out.columns = make([]Column, len(f.columns))
	copy(out.columns, f.columns)
	return out
}
