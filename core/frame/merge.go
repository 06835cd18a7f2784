package frame

import (
	"fmt"
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/internal/logging"
)

// MergePolicy selects whose header values survive a collision when frames
// are combined. Deriving a frame never merges headers implicitly; every
// combining operation computes the result headers through this policy.
type MergePolicy int

const (
	// MergeNone discards both sides, yielding empty headers.
	MergeNone MergePolicy = iota
	// MergeLeft keeps the first input's values on key collision.
	MergeLeft
	// MergeRight keeps the second input's values on key collision.
	MergeRight
)

// ParseMergePolicy parses a policy token, case-insensitively. The empty
// string and "none" both select MergeNone.
func ParseMergePolicy(token string) (MergePolicy, error) {
	switch strings.ToLower(token) {
	case "", "none":
		return MergeNone, nil
	case "left":
		return MergeLeft, nil
	case "right":
		return MergeRight, nil
	}
	return MergeNone, fmt.Errorf("invalid header merge policy %q, should be one of left, right, none", token)
}

// MergeHeaders combines two header mappings under the given policy. With
// MergeLeft the right side's entry order is kept and the left side's values
// win on collision; MergeRight mirrors that; MergeNone yields empty headers.
func MergeHeaders(left, right *Headers, policy MergePolicy) *Headers {
	out := NewHeaders()
	switch policy {
	case MergeLeft:
		left, right = right, left
		fallthrough
	case MergeRight:
		for _, k := range left.Keys() {
			v, _ := left.Get(k)
			out.Set(k, v) //nolint:errcheck // keys come from a valid Headers
		}
		for _, k := range right.Keys() {
			v, _ := right.Get(k)
			out.Set(k, v) //nolint:errcheck // keys come from a valid Headers
		}
	}
	return out
}

// foldHeaders applies the merge policy left-to-right across all inputs.
func foldHeaders(frames []*Frame, policy MergePolicy) *Headers {
	if len(frames) == 0 {
		return NewHeaders()
	}
	acc := frames[0].Headers()
	if acc == nil {
		acc = NewHeaders()
	}
	for _, f := range frames[1:] {
		h := f.Headers()
		if h == nil {
			h = NewHeaders()
		}
		acc = MergeHeaders(acc, h, policy)
	}
	if policy == MergeNone {
		return NewHeaders()
	}
	return acc
}

// Concat appends the rows of the given frames, which must agree on column
// names and kinds in order. The result headers follow the policy fold unless
// newHeaders is given, which always wins.
func Concat(frames []*Frame, policy MergePolicy, newHeaders *Headers) (*Frame, error) {
	if len(frames) == 0 {
		return nil, errors.Wrap(errors.ErrValidation, "no frames to concatenate")
	}
	logging.Debug("concatenating frames", "count", len(frames))
	first := frames[0]
	cols := make([]Column, first.NumCols())
	for i, c := range first.Columns() {
		empty, err := NewEmptyColumn(c.Name(), c.Kind())
		if err != nil {
			return nil, err
		}
		cols[i] = empty
	}
	for _, f := range frames {
		if f.NumCols() != len(cols) {
			return nil, errors.Wrapf(errors.ErrValidation,
				"frame has %d columns, expected %d", f.NumCols(), len(cols))
		}
		for i, c := range f.Columns() {
			if c.Name() != cols[i].Name() || c.Kind() != cols[i].Kind() {
				return nil, errors.Wrapf(errors.ErrValidation,
					"column %d is %s %q, expected %s %q",
					i, c.Kind(), c.Name(), cols[i].Kind(), cols[i].Name())
			}
			for r := 0; r < c.Len(); r++ {
				if c.IsNull(r) {
					if err := cols[i].AppendNull(); err != nil {
						return nil, err
					}
					continue
				}
				if err := cols[i].Append(c.Value(r)); err != nil {
					return nil, err
				}
			}
		}
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.SetHeaders(resultHeaders(frames, policy, newHeaders))
	return out, nil
}

// Merge performs an inner join of two frames on the named key column. Shared
// non-key column names get "_x"/"_y" suffixes. The result headers follow the
// policy unless newHeaders is given.
func Merge(left, right *Frame, on string, policy MergePolicy, newHeaders *Headers) (*Frame, error) {
	lkey, ok := left.Column(on)
	if !ok {
		return nil, &errors.KeyNotFoundError{Key: on}
	}
	rkey, ok := right.Column(on)
	if !ok {
		return nil, &errors.KeyNotFoundError{Key: on}
	}
	logging.Debug("merging frames", "on", on)

	// match rows by the rendered key; kinds may differ in width only
	rightRows := make(map[string][]int)
	for i := 0; i < rkey.Len(); i++ {
		k, err := FormatCell(rkey, i)
		if err != nil {
			return nil, err
		}
		rightRows[k] = append(rightRows[k], i)
	}
	var lsel, rsel []int
	for i := 0; i < lkey.Len(); i++ {
		k, err := FormatCell(lkey, i)
		if err != nil {
			return nil, err
		}
		for _, r := range rightRows[k] {
			lsel = append(lsel, i)
			rsel = append(rsel, r)
		}
	}

	shared := make(map[string]bool)
	for _, c := range left.Columns() {
		if c.Name() == on {
			continue
		}
		if _, ok := right.Column(c.Name()); ok {
			shared[c.Name()] = true
		}
	}

	var cols []Column
	for _, c := range left.Columns() {
		sel := c.Select(lsel)
		if shared[c.Name()] {
			sel = sel.Renamed(c.Name() + "_x")
		}
		cols = append(cols, sel)
	}
	for _, c := range right.Columns() {
		if c.Name() == on {
			continue
		}
		sel := c.Select(rsel)
		if shared[c.Name()] {
			sel = sel.Renamed(c.Name() + "_y")
		}
		cols = append(cols, sel)
	}

	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.SetHeaders(resultHeaders([]*Frame{left, right}, policy, newHeaders))
	return out, nil
}

// resultHeaders picks the caller's replacement headers when given, otherwise
// folds the inputs' headers under the policy.
func resultHeaders(frames []*Frame, policy MergePolicy, newHeaders *Headers) *Headers {
	if newHeaders != nil {
		return newHeaders.Clone()
	}
	return foldHeaders(frames, policy)
}
