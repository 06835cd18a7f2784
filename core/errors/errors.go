// Package errors provides the typed error kinds raised while handling TFS files.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for broad classification.
var (
	// ErrFormat indicates a structural problem in a TFS file.
	ErrFormat = errors.New("tfs format error")
	// ErrValidation indicates a table that violates TFS validity rules.
	ErrValidation = errors.New("tfs validation error")
	// ErrCompatibility indicates a table a strict consumer cannot read back.
	ErrCompatibility = errors.New("tfs compatibility error")
	// ErrNotFound indicates a missing key, column or header.
	ErrNotFound = errors.New("not found")
)

// MissingTypeTagError is raised when a header line carries no type tag.
type MissingTypeTagError struct {
	Tokens []string // tokens of the offending line
}

func (e *MissingTypeTagError) Error() string {
	return fmt.Sprintf("no type tag found in header line: %q", strings.Join(e.Tokens, " "))
}

func (e *MissingTypeTagError) Unwrap() error { return ErrFormat }

// MissingColumnNamesError is raised when no column-names line ('*') is found
// before the data section begins.
type MissingColumnNamesError struct {
	Path string
}

func (e *MissingColumnNamesError) Error() string {
	return fmt.Sprintf("no column names in file %s", e.Path)
}

func (e *MissingColumnNamesError) Unwrap() error { return ErrFormat }

// MissingColumnTypesError is raised when no column-types line ('$') is found
// before the data section begins.
type MissingColumnTypesError struct {
	Path string
}

func (e *MissingColumnTypesError) Error() string {
	return fmt.Sprintf("no column types in file %s", e.Path)
}

func (e *MissingColumnTypesError) Unwrap() error { return ErrFormat }

// UnknownTypeTagError is raised when a type tag matches none of the known
// tags and fails the legacy width-annotated string pattern.
type UnknownTypeTagError struct {
	Tag string
}

func (e *UnknownTypeTagError) Error() string {
	return fmt.Sprintf("unknown type tag: %q", e.Tag)
}

func (e *UnknownTypeTagError) Unwrap() error { return ErrFormat }

// InvalidBooleanHeaderError is raised when a boolean-tagged header value is
// not one of the accepted boolean literals.
type InvalidBooleanHeaderError struct {
	Value string
}

func (e *InvalidBooleanHeaderError) Error() string {
	return fmt.Sprintf("invalid boolean header value parsed: %q", e.Value)
}

func (e *InvalidBooleanHeaderError) Unwrap() error { return ErrFormat }

// TypeResolutionError is raised when a column's runtime type maps to no TFS
// type tag.
type TypeResolutionError struct {
	What string // description of the value or column that failed resolution
}

func (e *TypeResolutionError) Error() string {
	return fmt.Sprintf("type of %s could not be resolved to a TFS type tag", e.What)
}

func (e *TypeResolutionError) Unwrap() error { return ErrFormat }

// NonStringHeaderNameError is raised when a header name is not usable text
// (empty or not valid UTF-8).
type NonStringHeaderNameError struct {
	Name string
}

func (e *NonStringHeaderNameError) Error() string {
	return fmt.Sprintf("header name %q is not a valid string", e.Name)
}

func (e *NonStringHeaderNameError) Unwrap() error { return ErrValidation }

// NonStringColumnNameError is raised when a column name is not usable text
// (empty or not valid UTF-8).
type NonStringColumnNameError struct {
	Name string
}

func (e *NonStringColumnNameError) Error() string {
	return fmt.Sprintf("column name %q is not a valid string", e.Name)
}

func (e *NonStringColumnNameError) Unwrap() error { return ErrValidation }

// SpaceInColumnNameError is raised when a column name contains a space.
type SpaceInColumnNameError struct {
	Names []string
}

func (e *SpaceInColumnNameError) Error() string {
	return fmt.Sprintf("TFS column names can not contain spaces: %q", e.Names)
}

func (e *SpaceInColumnNameError) Unwrap() error { return ErrValidation }

// DuplicateColumnsError is raised under the 'raise' duplicate policy when
// column names are not unique.
type DuplicateColumnsError struct {
	Names []string
}

func (e *DuplicateColumnsError) Error() string {
	return fmt.Sprintf("duplicate column names: %q", e.Names)
}

func (e *DuplicateColumnsError) Unwrap() error { return ErrValidation }

// DuplicateIndexError is raised under the 'raise' duplicate policy when row
// index values are not unique.
type DuplicateIndexError struct {
	Values []string
}

func (e *DuplicateIndexError) Error() string {
	return fmt.Sprintf("duplicate index values: %q", e.Values)
}

func (e *DuplicateIndexError) Unwrap() error { return ErrValidation }

// IterableCellValueError is raised when a data cell holds a nested value
// (slice, array or map), which cannot round-trip through flat text.
type IterableCellValueError struct {
	Rows []int
}

func (e *IterableCellValueError) Error() string {
	return fmt.Sprintf("frame contains list/tuple values at rows %v", e.Rows)
}

func (e *IterableCellValueError) Unwrap() error { return ErrValidation }

// MissingHeaderBlockError is raised in strict validation when the frame has
// no header mapping at all (distinct from an existing-but-empty one).
type MissingHeaderBlockError struct{}

func (e *MissingHeaderBlockError) Error() string {
	return "headers should be present in MAD-X compatibility mode"
}

func (e *MissingHeaderBlockError) Unwrap() error { return ErrCompatibility }

// IncompatibleBooleanHeaderError is raised in strict validation on a boolean
// header value.
type IncompatibleBooleanHeaderError struct {
	Name string
}

func (e *IncompatibleBooleanHeaderError) Error() string {
	return fmt.Sprintf("TFS headers can not contain boolean values in MAD-X compatibility mode: %q", e.Name)
}

func (e *IncompatibleBooleanHeaderError) Unwrap() error { return ErrCompatibility }

// IncompatibleComplexHeaderError is raised in strict validation on a complex
// header value.
type IncompatibleComplexHeaderError struct {
	Name string
}

func (e *IncompatibleComplexHeaderError) Error() string {
	return fmt.Sprintf("TFS headers can not contain complex values in MAD-X compatibility mode: %q", e.Name)
}

func (e *IncompatibleComplexHeaderError) Unwrap() error { return ErrCompatibility }

// IncompatibleNullHeaderError is raised in strict validation on a nil header
// value, which would write as 'nil' and not be read back.
type IncompatibleNullHeaderError struct {
	Name string
}

func (e *IncompatibleNullHeaderError) Error() string {
	return fmt.Sprintf("TFS headers can not contain nil values in MAD-X compatibility mode: %q", e.Name)
}

func (e *IncompatibleNullHeaderError) Unwrap() error { return ErrCompatibility }

// IncompatibleBooleanColumnError is raised in strict validation on a
// boolean-typed column.
type IncompatibleBooleanColumnError struct {
	Name string
}

func (e *IncompatibleBooleanColumnError) Error() string {
	return fmt.Sprintf("TFS frames can not contain boolean columns in MAD-X compatibility mode: %q", e.Name)
}

func (e *IncompatibleBooleanColumnError) Unwrap() error { return ErrCompatibility }

// IncompatibleComplexColumnError is raised in strict validation on a
// complex-typed column.
type IncompatibleComplexColumnError struct {
	Name string
}

func (e *IncompatibleComplexColumnError) Error() string {
	return fmt.Sprintf("TFS frames can not contain complex columns in MAD-X compatibility mode: %q", e.Name)
}

func (e *IncompatibleComplexColumnError) Unwrap() error { return ErrCompatibility }

// KeyNotFoundError is raised when a name resolves to neither a column nor a
// header entry.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%q is neither in the frame nor in headers", e.Key)
}

func (e *KeyNotFoundError) Unwrap() error { return ErrNotFound }

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
