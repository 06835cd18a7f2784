// Package tools holds small hygiene utilities for TFS files: dropping
// missing-value rows, stripping malformed header lines, and rounding a value
// to its error's significant digits.
package tools

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/reader"
	"github.com/pylhc/tfs-go/core/types"
	"github.com/pylhc/tfs-go/core/writer"
	"github.com/pylhc/tfs-go/internal/logging"
)

// SignificantDigits rounds value and its error with respect to the size of
// the error, returning both as strings.
func SignificantDigits(value, err float64) (string, string, error) {
	if err == 0 {
		return "", "", errors.Wrap(errors.ErrValidation, "input error of 0, can not compute significant digits")
	}
	digits := -int(math.Floor(math.Log10(math.Abs(err))))
	if math.Floor(err*math.Pow(10, float64(digits))) == 1 {
		digits++
	}
	if digits < 0 {
		digits = 0
	}
	shift := math.Pow(10, float64(digits))
	roundTo := func(v float64) float64 { return math.Round(v*shift) / shift }
	return fmt.Sprintf("%.*f", digits, roundTo(value)),
		fmt.Sprintf("%.*f", digits, roundTo(err)), nil
}

// RemoveNaNFromFiles drops missing-value rows from the given files. With
// replace the files are overwritten; otherwise new files with ".dropna"
// appended are written. Files that can not be loaded are skipped with a
// warning.
func RemoveNaNFromFiles(paths []string, replace bool) {
	for _, path := range paths {
		f, err := reader.Read(path, nil)
		if err != nil {
			logging.Warn("skipped file as it could not be loaded", "path", path, "err", err)
			continue
		}
		logging.Info("read file", "path", path)
		out := dropNullRows(f)
		target := path
		if !replace {
			target = path + ".dropna"
		}
		if err := writer.Write(target, out, nil); err != nil {
			logging.Warn("could not write sanitized file", "path", target, "err", err)
		}
	}
}

// dropNullRows keeps only rows with no null or NaN cell in any column.
func dropNullRows(f *frame.Frame) *frame.Frame {
	var keep []int
	for r := 0; r < f.NumRows(); r++ {
		clean := true
		for _, c := range f.Columns() {
			if c.IsNull(r) {
				clean = false
				break
			}
		}
		if clean {
			keep = append(keep, r)
		}
	}
	cols := make([]frame.Column, 0, f.NumCols())
	for _, c := range f.Columns() {
		cols = append(cols, c.Select(keep))
	}
	out, err := frame.New(cols...)
	if err != nil {
		// columns came row-aligned from a valid frame
		return f
	}
	out.SetHeaders(f.Headers().Clone())
	if idx := f.Index(); idx != nil {
		out.SetIndexColumn(idx.Select(keep))
	}
	return out
}

// RemoveHeaderCommentsFromFiles checks files for header lines without a type
// tag and removes those in place. Only lines before the column-name line are
// considered; the files are assumed uncompressed.
func RemoveHeaderCommentsFromFiles(paths []string) error {
	for _, path := range paths {
		logging.Info("checking file", "path", path)
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		lines := strings.SplitAfter(string(raw), "\n")
		var kept []string
		deleted := 0
		pastSchema := false
		for _, line := range lines {
			if !pastSchema {
				if strings.HasPrefix(line, "*") {
					pastSchema = true
				} else if strings.HasPrefix(line, "@") && !strings.Contains(line, types.Sigil) {
					deleted++
					logging.Info("deleted line", "line", strings.TrimSpace(line))
					continue
				}
			}
			kept = append(kept, line)
		}
		if deleted == 0 {
			continue
		}
		logging.Info("found lines to delete", "count", deleted)
		if err := os.WriteFile(path, []byte(strings.Join(kept, "")), 0644); err != nil {
			return err
		}
	}
	return nil
}
