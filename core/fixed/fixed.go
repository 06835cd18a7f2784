// Package fixed provides frames with pre-declared columns and headers: only
// what the definition names may be set, which ensures a written file always
// has the expected schema. Plane-templated names ("BET{}") are instantiated
// through explicit builder calls, not reflection.
package fixed

import (
	"path/filepath"
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/reader"
	"github.com/pylhc/tfs-go/core/types"
	"github.com/pylhc/tfs-go/core/validate"
	"github.com/pylhc/tfs-go/core/writer"
)

// ColumnDef declares a column or header by name and kind. The unit is kept
// for callers that want it; nothing here interprets it.
type ColumnDef struct {
	Name string
	Kind types.Kind
	Unit string
}

// Plane instantiates a templated definition for one plane: "BET{}" becomes
// "BETX" for plane "X".
func (d ColumnDef) Plane(plane string) ColumnDef {
	return ColumnDef{
		Name: strings.ReplaceAll(d.Name, "{}", strings.ToUpper(plane)),
		Kind: d.Kind,
		Unit: d.Unit,
	}
}

// Definition declares the full schema of a fixed frame.
type Definition struct {
	// Filename is the file template; it may contain a "{}" plane slot.
	Filename string
	// Columns and Headers are the allowed entries; templated names are
	// instantiated per plane.
	Columns []ColumnDef
	Headers []ColumnDef
	// Index names the column designated as row index, if any.
	Index string
}

// Frame is a schema-constrained frame bound to one file.
type Frame struct {
	def     Definition
	plane   string
	dir     string
	inner   *frame.Frame
	columns map[string]ColumnDef
	headers map[string]ColumnDef
}

// New builds an empty fixed frame for one plane and directory. Columns are
// added through SetColumn; declared columns never set are filled with kind
// defaults when the frame is written.
func New(def Definition, plane, dir string) (*Frame, error) {
	f := &Frame{
		def:     def,
		plane:   plane,
		dir:     dir,
		columns: make(map[string]ColumnDef),
		headers: make(map[string]ColumnDef),
	}
	for _, cd := range def.Columns {
		planed := cd.Plane(plane)
		f.columns[planed.Name] = planed
	}
	for _, hd := range def.Headers {
		planed := hd.Plane(plane)
		f.headers[planed.Name] = planed
	}
	inner, err := frame.New()
	if err != nil {
		return nil, err
	}
	f.inner = inner
	return f, nil
}

// Path returns the file this frame is bound to.
func (f *Frame) Path() string {
	name := strings.ReplaceAll(f.def.Filename, "{}", strings.ToLower(f.plane))
	return filepath.Join(f.dir, name)
}

// Inner exposes the underlying frame for read access.
func (f *Frame) Inner() *frame.Frame { return f.inner }

// SetColumn replaces a declared column. Undeclared names and kind
// mismatches are rejected.
func (f *Frame) SetColumn(col frame.Column) error {
	decl, ok := f.columns[col.Name()]
	if !ok {
		return errors.Wrapf(errors.ErrValidation,
			"column %q is not declared in the fixed definition", col.Name())
	}
	if col.Kind() != decl.Kind {
		return errors.Wrapf(errors.ErrValidation,
			"column %q is declared %s, got %s", col.Name(), decl.Kind, col.Kind())
	}
	f.inner.DropColumn(col.Name())
	return f.inner.AddColumn(col)
}

// SetHeader sets a declared header entry. Undeclared names and kind
// mismatches are rejected.
func (f *Frame) SetHeader(name string, v frame.Value) error {
	decl, ok := f.headers[name]
	if !ok {
		return errors.Wrapf(errors.ErrValidation,
			"header %q is not declared in the fixed definition", name)
	}
	if v.Kind() != decl.Kind {
		return errors.Wrapf(errors.ErrValidation,
			"header %q is declared %s, got %s", name, decl.Kind, v.Kind())
	}
	return f.inner.Headers().Set(name, v)
}

// ValidateDefinitions checks that nothing undeclared crept into the frame,
// e.g. through direct manipulation of the inner frame.
func (f *Frame) ValidateDefinitions() error {
	for _, c := range f.inner.Columns() {
		decl, ok := f.columns[c.Name()]
		if !ok {
			return errors.Wrapf(errors.ErrValidation,
				"column %q is not declared in the fixed definition", c.Name())
		}
		if c.Kind() != decl.Kind {
			return errors.Wrapf(errors.ErrValidation,
				"column %q is declared %s, got %s", c.Name(), decl.Kind, c.Kind())
		}
	}
	h := f.inner.Headers()
	for _, name := range h.Keys() {
		decl, ok := f.headers[name]
		if !ok {
			return errors.Wrapf(errors.ErrValidation,
				"header %q is not declared in the fixed definition", name)
		}
		v, _ := h.Get(name)
		if v.Kind() != decl.Kind {
			return errors.Wrapf(errors.ErrValidation,
				"header %q is declared %s, got %s", name, decl.Kind, v.Kind())
		}
	}
	return nil
}

// Read loads the bound file and checks it against the definition.
func (f *Frame) Read() error {
	loaded, err := reader.Read(f.Path(), &reader.Options{Index: f.def.Index})
	if err != nil {
		return err
	}
	f.inner = loaded
	return f.ValidateDefinitions()
}

// kindDefault returns the fill value for a declared column that was never
// set.
func kindDefault(k types.Kind) any {
	switch k {
	case types.String:
		return ""
	case types.Int:
		return int64(0)
	case types.Float:
		return 0.0
	case types.Bool:
		return false
	case types.Complex:
		return complex128(0)
	}
	return nil
}

// fillDefaults adds every declared-but-absent column, padded with the kind
// default to the current row count. The declared order is kept for columns
// appended here.
func (f *Frame) fillDefaults() error {
	rows := f.inner.NumRows()
	for _, cd := range f.def.Columns {
		planed := cd.Plane(f.plane)
		if planed.Name == f.def.Index {
			continue
		}
		if _, ok := f.inner.Column(planed.Name); ok {
			continue
		}
		if idx := f.inner.Index(); idx != nil && idx.Name() == planed.Name {
			continue
		}
		col, err := frame.NewEmptyColumn(planed.Name, planed.Kind)
		if err != nil {
			return err
		}
		for i := 0; i < rows; i++ {
			if err := col.Append(kindDefault(planed.Kind)); err != nil {
				return err
			}
		}
		if err := f.inner.AddColumn(col); err != nil {
			return err
		}
	}
	return nil
}

// Write fills defaults, checks the definitions and writes the bound file.
func (f *Frame) Write() error {
	if err := f.fillDefaults(); err != nil {
		return err
	}
	if err := f.ValidateDefinitions(); err != nil {
		return err
	}
	opts := &writer.Options{Profile: validate.ProfilePermissive}
	if f.inner.Index() != nil {
		opts.IndexName = f.inner.Index().Name()
	}
	return writer.Write(f.Path(), f.inner, opts)
}
