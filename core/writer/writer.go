// Package writer renders frames back to the exact TFS text layout: header
// block, column-name line, column-type line and data block.
package writer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pylhc/tfs-go/core/compression"
	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/types"
	"github.com/pylhc/tfs-go/core/validate"
	"github.com/pylhc/tfs-go/internal/logging"
)

const (
	// DefaultColumnWidth is used for both data and header columns when the
	// caller does not pick a width.
	DefaultColumnWidth = 20
	// MinColumnWidth is the hard floor enforced over any smaller
	// caller-supplied data column width.
	MinColumnWidth = 10
)

// Options configure Write.
type Options struct {
	// Headers overrides the frame's own header mapping.
	Headers *frame.Headers
	// SaveIndex materializes the row index as the leading data column under
	// the marker-prefixed name.
	SaveIndex bool
	// IndexName materializes the row index under this explicit name
	// instead; implies SaveIndex.
	IndexName string
	// ColWidth is the data column width, floored at MinColumnWidth.
	ColWidth int
	// HeaderWidth formats header names and values.
	HeaderWidth int
	// DuplicatePolicy decides whether duplicate indices or columns warn or
	// raise during validation.
	DuplicatePolicy validate.Policy
	// Profile selects the validation rule set to run before formatting.
	// ProfileNone (the default) skips validation entirely.
	Profile validate.Profile
}

// Write renders the frame and writes it to path, compressing per the path
// extension. Validation, when requested, runs before any byte is written.
// A trailing newline is always emitted at end of file.
func Write(path string, f *frame.Frame, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	colWidth := opts.ColWidth
	if colWidth == 0 {
		colWidth = DefaultColumnWidth
	}
	if colWidth < MinColumnWidth {
		colWidth = MinColumnWidth
	}
	headerWidth := opts.HeaderWidth
	if headerWidth == 0 {
		headerWidth = DefaultColumnWidth
	}

	if opts.Profile != validate.ProfileNone {
		info := fmt.Sprintf("to be written in %s", path)
		if err := validate.Validate(f, info, opts.DuplicatePolicy, opts.Profile); err != nil {
			return err
		}
	}

	headers := opts.Headers
	if headers == nil {
		headers = f.Headers()
	}

	cols := f.Columns()
	leftAlignFirst := false
	if (opts.SaveIndex || opts.IndexName != "") && f.Index() != nil {
		name := f.MaterializedIndexName(opts.IndexName)
		cols = append([]frame.Column{f.Index().Renamed(name)}, cols...)
		leftAlignFirst = true
	}

	content, err := render(headers, cols, colWidth, headerWidth, leftAlignFirst)
	if err != nil {
		return err
	}

	logging.Debug("writing file", "path", path)
	wc, err := compression.OpenWriter(path)
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(content)); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

// render produces the four ordered blocks. The header block is omitted when
// the mapping is empty; an empty data section stands in as a single blank
// line so the file stays parseable.
func render(headers *frame.Headers, cols []frame.Column, colWidth, headerWidth int, leftAlignFirst bool) (string, error) {
	var blocks []string

	if headers.Len() > 0 {
		block, err := headerBlock(headers, headerWidth)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}

	names := make([]string, len(cols))
	tags := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
		tag, err := types.KindToTag(c.Kind())
		if err != nil {
			return "", &errors.TypeResolutionError{What: fmt.Sprintf("column %q", c.Name())}
		}
		tags[i] = tag
	}
	blocks = append(blocks, namesSigilLine("*", names, colWidth, leftAlignFirst))
	blocks = append(blocks, namesSigilLine("$", tags, colWidth, leftAlignFirst))

	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	if rows == 0 || len(cols) == 0 {
		blocks = append(blocks, "")
	} else {
		block, err := dataBlock(cols, colWidth, leftAlignFirst)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n") + "\n", nil
}

// headerBlock renders one line per entry, in insertion order.
func headerBlock(headers *frame.Headers, width int) (string, error) {
	lines := make([]string, 0, headers.Len())
	for _, name := range headers.Keys() {
		value, _ := headers.Get(name)
		line, err := headerLine(name, value, width)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func headerLine(name string, value frame.Value, width int) (string, error) {
	if name == "" || !utf8.ValidString(name) {
		return "", &errors.NonStringHeaderNameError{Name: name}
	}
	tag, err := types.KindToTag(value.Kind())
	if err != nil {
		return "", &errors.TypeResolutionError{What: fmt.Sprintf("header %q", name)}
	}
	literal, err := headerLiteral(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("@ %-*s %s %*s", width, name, tag, width, literal), nil
}

// headerLiteral renders a header value in its on-disk spelling: quoted
// strings, lowercase true/false, complex with a trailing i, nil for null.
func headerLiteral(value frame.Value) (string, error) {
	switch value.Kind() {
	case types.String:
		return quoteIfNeeded(value.Str()), nil
	case types.Int:
		return strconv.FormatInt(value.Int(), 10), nil
	case types.Float:
		return strconv.FormatFloat(value.Float(), 'g', -1, 64), nil
	case types.Bool:
		return strconv.FormatBool(value.Bool()), nil
	case types.Complex:
		return frame.FormatComplex(value.Complex()), nil
	case types.Null:
		return "nil", nil
	}
	return "", &errors.TypeResolutionError{What: "header value"}
}

func quoteIfNeeded(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `'`) {
		return s
	}
	return `"` + s + `"`
}

// namesSigilLine renders the column-name ('*') and column-type ('$') lines.
func namesSigilLine(sigil string, entries []string, width int, leftAlignFirst bool) string {
	cells := make([]string, len(entries))
	for i, e := range entries {
		cells[i] = pad(e, width, leftAlignFirst && i == 0)
	}
	return sigil + " " + strings.Join(cells, " ")
}

func pad(s string, width int, left bool) string {
	if left {
		return fmt.Sprintf("%-*s", width, s)
	}
	return fmt.Sprintf("%*s", width, s)
}

// dataBlock renders one line per row. Every column uses a type-driven format
// spec; only a materialized index column is left-aligned.
func dataBlock(cols []frame.Column, width int, leftAlignFirst bool) (string, error) {
	rows := cols[0].Len()
	var sb strings.Builder
	for r := 0; r < rows; r++ {
		sb.WriteString("  ")
		for i, c := range cols {
			if i > 0 {
				sb.WriteByte(' ')
			}
			cell, err := formatCell(c, r, width, leftAlignFirst && i == 0)
			if err != nil {
				return "", err
			}
			sb.WriteString(cell)
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func formatCell(c frame.Column, r, width int, left bool) (string, error) {
	if c.Kind() == types.String && c.IsNull(r) {
		return pad("nil", width, left), nil
	}
	switch col := c.(type) {
	case *frame.IntColumn:
		if left {
			return fmt.Sprintf("%-*d", width, col.At(r)), nil
		}
		return fmt.Sprintf("%*d", width, col.At(r)), nil
	case *frame.FloatColumn:
		// reserve room for sign and exponent so values never silently
		// truncate into exponent overflow
		prec := width - len("-0.e-000")
		if left {
			return fmt.Sprintf("%-*.*g", width, prec, col.At(r)), nil
		}
		return fmt.Sprintf("%*.*g", width, prec, col.At(r)), nil
	case *frame.StringColumn:
		s, _ := col.At(r)
		return pad(quoteIfNeeded(s), width, left), nil
	case *frame.BoolColumn:
		return pad(strconv.FormatBool(col.At(r)), width, left), nil
	case *frame.ComplexColumn:
		return pad(frame.FormatComplex(col.At(r)), width, left), nil
	}
	return "", &errors.TypeResolutionError{What: fmt.Sprintf("column %q", c.Name())}
}
