// Package validate enforces TFS validity rules on frames, with two
// compatibility profiles matching the two downstream consumers: MAD-X is
// strict about which types it reads back, MAD-NG is permissive.
package validate

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/types"
	"github.com/pylhc/tfs-go/internal/logging"
)

// Profile is a validation rule set.
type Profile int

const (
	// ProfileNone skips validation entirely. Large frames should not pay
	// for validation on every read or write.
	ProfileNone Profile = iota
	// ProfileStrict runs the common checks plus the MAD-X restrictions.
	ProfileStrict
	// ProfilePermissive runs the common checks only; booleans, complex
	// values and nils are legal everywhere.
	ProfilePermissive
)

// ParseProfile parses a compatibility token, case-insensitively. The empty
// string selects ProfileNone.
func ParseProfile(token string) (Profile, error) {
	switch strings.ToLower(token) {
	case "":
		return ProfileNone, nil
	case "madx", "mad-x":
		return ProfileStrict, nil
	case "madng", "mad-ng":
		return ProfilePermissive, nil
	}
	return ProfileNone, fmt.Errorf("invalid compatibility mode provided: %q", token)
}

// Policy selects how duplicate indices and columns are handled.
type Policy int

const (
	// PolicyWarn logs duplicates and continues.
	PolicyWarn Policy = iota
	// PolicyRaise turns duplicates into hard failures.
	PolicyRaise
)

// ParsePolicy parses a duplicate policy token, case-insensitively. The empty
// string selects PolicyWarn.
func ParsePolicy(token string) (Policy, error) {
	switch strings.ToLower(token) {
	case "", "warn":
		return PolicyWarn, nil
	case "raise":
		return PolicyRaise, nil
	}
	return PolicyWarn, fmt.Errorf("invalid value for duplicate policy: %q", token)
}

// Validate enforces the validity rules on f under the given profile. With
// ProfileNone nothing runs at all; this is deliberate and mirrored on both
// the read and write paths. The info string is included in log statements.
//
// The one self-healing rule: under ProfileStrict a missing TYPE header is
// auto-inserted with a placeholder value and a warning. Everything else only
// detects and reports or raises.
func Validate(f *frame.Frame, info string, policy Policy, profile Profile) error {
	if profile == ProfileNone {
		return nil
	}

	if err := checkIterables(f, info); err != nil {
		return err
	}
	warnNonPhysical(f, info)
	if err := checkDuplicates(f, policy); err != nil {
		return err
	}
	if err := checkColumnNames(f); err != nil {
		return err
	}

	if profile == ProfileStrict {
		if err := checkStrict(f, info); err != nil {
			return err
		}
	}
	logging.Debug("frame validated", "info", info)
	return nil
}

// checkIterables rejects nested cell values, which cannot round-trip
// through flat text.
func checkIterables(f *frame.Frame, info string) error {
	rowSet := map[int]bool{}
	for _, c := range f.Columns() {
		if c.Kind() != types.Object {
			continue
		}
		for i := 0; i < c.Len(); i++ {
			switch reflect.ValueOf(c.Value(i)).Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				rowSet[i] = true
			}
		}
	}
	if len(rowSet) == 0 {
		return nil
	}
	var rows []int
	for i := 0; i < f.NumRows(); i++ {
		if rowSet[i] {
			rows = append(rows, i)
		}
	}
	logging.Error("frame contains list/tuple values", "info", info, "rows", rows)
	return &errors.IterableCellValueError{Rows: rows}
}

// warnNonPhysical logs rows holding NaN, infinities or missing values, in
// the data and in the headers. Never fatal.
func warnNonPhysical(f *frame.Frame, info string) {
	var rows []int
	for i := 0; i < f.NumRows(); i++ {
		if rowNonPhysical(f, i) {
			rows = append(rows, i)
		}
	}
	if len(rows) > 0 {
		logging.Warn("frame contains non-physical values", "info", info, "rows", rows)
	}
	h := f.Headers()
	for _, k := range h.Keys() {
		v, _ := h.Get(k)
		if v.IsNull() || (v.Kind() == types.Float && nonFinite(v.Float())) {
			logging.Warn("frame contains non-physical values in headers", "info", info)
			break
		}
	}
}

func rowNonPhysical(f *frame.Frame, i int) bool {
	for _, c := range f.Columns() {
		if c.IsNull(i) {
			return true
		}
		switch col := c.(type) {
		case *frame.FloatColumn:
			if nonFinite(col.At(i)) {
				return true
			}
		case *frame.ComplexColumn:
			v := col.At(i)
			if nonFinite(real(v)) || nonFinite(imag(v)) {
				return true
			}
		}
	}
	return false
}

func nonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// checkDuplicates reports non-unique index values and column names; the
// policy decides whether that is fatal.
func checkDuplicates(f *frame.Frame, policy Policy) error {
	if idx := f.Index(); idx != nil {
		seen := map[string]bool{}
		var dups []string
		for i := 0; i < idx.Len(); i++ {
			k, err := frame.FormatCell(idx, i)
			if err != nil {
				return err
			}
			if seen[k] {
				dups = append(dups, k)
			}
			seen[k] = true
		}
		if len(dups) > 0 {
			logging.Warn("non-unique indices found", "values", dups)
			if policy == PolicyRaise {
				return &errors.DuplicateIndexError{Values: dups}
			}
		}
	}

	seen := map[string]bool{}
	var dups []string
	for _, name := range f.ColumnNames() {
		if seen[name] {
			dups = append(dups, name)
		}
		seen[name] = true
	}
	if len(dups) > 0 {
		logging.Warn("non-unique column names found", "names", dups)
		if policy == PolicyRaise {
			return &errors.DuplicateColumnsError{Names: dups}
		}
	}
	return nil
}

// checkColumnNames enforces that column names are usable strings without
// embedded spaces. Deal-breakers for the format itself.
func checkColumnNames(f *frame.Frame) error {
	var spaced []string
	for _, name := range f.ColumnNames() {
		if name == "" || !utf8.ValidString(name) {
			return &errors.NonStringColumnNameError{Name: name}
		}
		if strings.Contains(name, " ") {
			spaced = append(spaced, name)
		}
	}
	if len(spaced) > 0 {
		return &errors.SpaceInColumnNameError{Names: spaced}
	}
	return nil
}

// checkStrict applies the MAD-X restrictions on top of the common checks.
func checkStrict(f *frame.Frame, info string) error {
	h := f.Headers()
	// MAD-X really wants a TYPE header, which can not be enforced on a
	// frame with no header capability at all.
	if h == nil {
		return &errors.MissingHeaderBlockError{}
	}

	for _, k := range h.Keys() {
		v, _ := h.Get(k)
		switch v.Kind() {
		case types.Bool:
			logging.Debug("boolean header value incompatible with MAD-X", "info", info, "name", k)
			return &errors.IncompatibleBooleanHeaderError{Name: k}
		case types.Complex:
			logging.Debug("complex header value incompatible with MAD-X", "info", info, "name", k)
			return &errors.IncompatibleComplexHeaderError{Name: k}
		case types.Null:
			logging.Debug("nil header value incompatible with MAD-X", "info", info, "name", k)
			return &errors.IncompatibleNullHeaderError{Name: k}
		}
	}

	if !h.Has("TYPE") {
		logging.Warn("MAD-X expects a TYPE header in the TFS file, which is missing; adding it")
		if err := h.Set("TYPE", frame.StringValue("Added by tfs-go for MAD-X compatibility")); err != nil {
			return err
		}
	}

	for _, c := range f.Columns() {
		switch c.Kind() {
		case types.Bool:
			logging.Debug("boolean column incompatible with MAD-X", "info", info, "name", c.Name())
			return &errors.IncompatibleBooleanColumnError{Name: c.Name()}
		case types.Complex:
			logging.Debug("complex column incompatible with MAD-X", "info", info, "name", c.Name())
			return &errors.IncompatibleComplexColumnError{Name: c.Name()}
		}
	}
	return nil
}
