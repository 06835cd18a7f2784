// Package reader parses TFS files: a metadata scanner for the header block
// and column schema, and a data-section codec that bulk-parses the remaining
// lines into typed columns.
package reader

import (
	"bufio"
	"io"
	"strings"

	"github.com/google/shlex"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/types"
)

// Line sigils of the TFS format.
const (
	headerSigil  = "@"
	namesSigil   = "*"
	typesSigil   = "$"
	commentSigil = "#"
)

// metadata is everything the scanner extracts before the data section.
type metadata struct {
	headers     *frame.Headers
	columnNames []string
	columnTags  []string
	skipLines   int // lines to skip before the data section
	hasNames    bool
	hasTypes    bool
}

// scanMetadata classifies lines by their first token and stops at the first
// data line; it never reads through the data region, which may be huge.
// Blank lines are skipped for classification but still counted toward the
// skip offset. Header lines are split shell-style, so quoted substrings with
// spaces stay one token.
func scanMetadata(r io.Reader) (*metadata, error) {
	md := &metadata{headers: frame.NewHeaders()}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	lineNo := -1
	for sc.Scan() {
		lineNo++
		stripped := strings.TrimSpace(sc.Text())
		if stripped == "" {
			continue
		}
		// comment lines must be skipped before tokenizing: the splitter
		// treats '#' as a comment starter and would yield zero tokens,
		// which is the data-start signal
		if strings.HasPrefix(stripped, commentSigil) {
			continue
		}
		tokens, err := shlex.Split(stripped)
		if err != nil || len(tokens) == 0 {
			// not shell-splittable: the data section starts here
			md.skipLines = lineNo
			return md, nil
		}
		switch tokens[0] {
		case headerSigil:
			name, value, err := parseHeaderLine(tokens[1:])
			if err != nil {
				return nil, err
			}
			if err := md.headers.Set(name, value); err != nil {
				return nil, err
			}
		case namesSigil:
			md.columnNames = tokens[1:]
			md.hasNames = true
		case typesSigil:
			md.columnTags = tokens[1:]
			md.hasTypes = true
		default:
			md.skipLines = lineNo
			return md, nil
		}
	}
	// no data section at all
	md.skipLines = lineNo + 1
	return md, sc.Err()
}

// parseHeaderLine parses the tokens following the '@' sigil. The first token
// starting with the tag sigil is the type tag; the tokens before it join
// into the name, the tokens after it join into the raw value.
func parseHeaderLine(parts []string) (string, frame.Value, error) {
	tagIdx := -1
	for i, p := range parts {
		if strings.HasPrefix(p, types.Sigil) {
			tagIdx = i
			break
		}
	}
	if tagIdx == -1 {
		return "", frame.Value{}, &errors.MissingTypeTagError{Tokens: parts}
	}
	name := strings.Join(parts[:tagIdx], " ")
	raw := stripQuotes(strings.Join(parts[tagIdx+1:], " "))
	value, err := frame.ParseValue(parts[tagIdx], raw)
	if err != nil {
		return "", frame.Value{}, err
	}
	return name, value, nil
}

// stripQuotes removes one layer of surrounding double quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
