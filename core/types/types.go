// Package types implements the TFS type-tag system: the bidirectional
// mapping between on-disk type tags and the semantic kinds a frame can hold.
package types

import (
	"strconv"
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
)

// Kind is the semantic type of a header value or column.
type Kind int

const (
	// Invalid is the zero Kind.
	Invalid Kind = iota
	// String is text.
	String
	// Int is a 64-bit signed integer.
	Int
	// Float is a double-precision float.
	Float
	// Bool is a boolean.
	Bool
	// Complex is a 128-bit complex number.
	Complex
	// Null is the nil value; legal in headers only.
	Null
	// Object is an untyped cell holder used during in-memory construction.
	// It maps to no tag and never reaches a file.
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Complex:
		return "complex"
	case Null:
		return "null"
	case Object:
		return "object"
	}
	return "invalid"
}

// Canonical on-disk type tags, as written by the formatter.
const (
	TagString  = "%s"
	TagInt     = "%d"
	TagFloat   = "%le"
	TagBool    = "%b"
	TagComplex = "%lz"
	TagNull    = "%n"
)

// Sigil is the first character of every type tag.
const Sigil = "%"

// tagToKind also carries the alternate spellings accepted on read.
var tagToKind = map[string]Kind{
	TagString:  String,
	"%bpm_s":   String,
	TagInt:     Int,
	"%hd":      Int,
	TagFloat:   Float,
	"%f":       Float,
	TagBool:    Bool,
	TagComplex: Complex,
	TagNull:    Null,
}

// TagToKind resolves an on-disk type tag to its semantic kind. Width-annotated
// string tags like "%20s" (as MAD-X outputs) resolve to String.
func TagToKind(tag string) (Kind, error) {
	if kind, ok := tagToKind[tag]; ok {
		return kind, nil
	}
	if isWidthAnnotatedString(tag) {
		return String, nil
	}
	return Invalid, &errors.UnknownTypeTagError{Tag: tag}
}

// isWidthAnnotatedString reports whether tag looks like "%<int>s", the way
// MAD-X declares string columns with their width.
func isWidthAnnotatedString(tag string) bool {
	if !strings.HasPrefix(tag, Sigil) || !strings.HasSuffix(tag, "s") || len(tag) < 3 {
		return false
	}
	_, err := strconv.Atoi(tag[1 : len(tag)-1])
	return err == nil
}

// KindToTag returns the canonical on-disk tag for a kind.
func KindToTag(kind Kind) (string, error) {
	switch kind {
	case String:
		return TagString, nil
	case Int:
		return TagInt, nil
	case Float:
		return TagFloat, nil
	case Bool:
		return TagBool, nil
	case Complex:
		return TagComplex, nil
	case Null:
		return TagNull, nil
	}
	return "", &errors.TypeResolutionError{What: "kind " + kind.String()}
}

// KindOf classifies a runtime scalar value. Bool is tested before the integer
// kinds: booleans are integer-representable in most engines and would
// otherwise be misclassified.
func KindOf(value any) Kind {
	switch value.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int
	case float32, float64:
		return Float
	case complex64, complex128:
		return Complex
	case string:
		return String
	}
	return Invalid
}
