package reader

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pylhc/tfs-go/core/compression"
	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/types"
	"github.com/pylhc/tfs-go/core/validate"
	"github.com/pylhc/tfs-go/internal/logging"
)

// nullToken is the universal null literal, for headers and data cells.
const nullToken = "nil"

// Options configure Read.
type Options struct {
	// Index names the column to promote to row index. When empty, a single
	// column carrying the index marker prefix is promoted instead.
	Index string
	// DuplicatePolicy decides whether duplicate indices or columns warn or
	// raise during validation.
	DuplicatePolicy validate.Policy
	// Profile selects the validation rule set to run after loading.
	// ProfileNone (the default) skips validation entirely.
	Profile validate.Profile
}

// Read parses the TFS table at path into a frame. Compression is detected
// from the path extension.
func Read(path string, opts *Options) (*frame.Frame, error) {
	if opts == nil {
		opts = &Options{}
	}
	logging.Debug("reading path", "path", path)

	md, err := readMetadata(path)
	if err != nil {
		return nil, err
	}
	if !md.hasNames {
		return nil, &errors.MissingColumnNamesError{Path: path}
	}
	if !md.hasTypes {
		return nil, &errors.MissingColumnTypesError{Path: path}
	}
	if len(md.columnNames) != len(md.columnTags) {
		return nil, errors.Wrapf(errors.ErrFormat,
			"file %s declares %d column names but %d column types",
			path, len(md.columnNames), len(md.columnTags))
	}

	cols := make([]frame.Column, len(md.columnNames))
	for i, tag := range md.columnTags {
		kind, err := types.TagToKind(tag)
		if err != nil {
			return nil, err
		}
		if cols[i], err = frame.NewEmptyColumn(md.columnNames[i], kind); err != nil {
			return nil, err
		}
	}

	if err := parseData(path, md.skipLines, cols); err != nil {
		return nil, err
	}

	f, err := frame.New(cols...)
	if err != nil {
		return nil, err
	}
	f.SetHeaders(md.headers)

	if opts.Index != "" {
		logging.Debug("setting column as index", "column", opts.Index)
		if err := f.PromoteIndex(opts.Index); err != nil {
			return nil, err
		}
	} else if f.PromoteMarkedIndex() {
		logging.Debug("found index identifier in columns")
	}

	if opts.Profile != validate.ProfileNone {
		info := fmt.Sprintf("from file %s", path)
		if err := validate.Validate(f, info, opts.DuplicatePolicy, opts.Profile); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ReadHeaders parses only the top of the file and returns the header
// mapping; the schema and data section are never parsed.
func ReadHeaders(path string) (*frame.Headers, error) {
	md, err := readMetadata(path)
	if err != nil {
		return nil, err
	}
	return md.headers, nil
}

// readMetadata opens a decompressing stream over the file and scans it up to
// the first data line. The handle is released on every exit path.
func readMetadata(path string) (*metadata, error) {
	rc, err := compression.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return scanMetadata(rc)
}

// parseData bulk-parses the data section into the column builders. The
// literal token nil is the missing-value sentinel: null in string columns,
// NaN in float and complex columns, an error in columns that can not
// represent it. A quoted "nil" stays the three-letter string.
func parseData(path string, skip int, cols []frame.Column) error {
	rc, err := compression.OpenReader(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo <= skip {
			continue
		}
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		if len(fields) != len(cols) {
			return errors.Wrapf(errors.ErrFormat,
				"line %d of %s has %d fields, expected %d", lineNo, path, len(fields), len(cols))
		}
		for i, fd := range fields {
			if !fd.quoted && fd.text == nullToken {
				if err := cols[i].AppendNull(); err != nil {
					return errors.Wrapf(err, "line %d of %s", lineNo, path)
				}
				continue
			}
			if err := cols[i].AppendRaw(fd.text); err != nil {
				return errors.Wrapf(err, "line %d of %s", lineNo, path)
			}
		}
	}
	return sc.Err()
}
