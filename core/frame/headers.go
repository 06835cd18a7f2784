package frame

import (
	"unicode/utf8"

	"github.com/pylhc/tfs-go/core/errors"
)

// Headers is an insertion-ordered mapping of header names to values. The
// order of entries survives a write/read cycle. A nil *Headers means the
// frame has no header capability at all, which strict validation treats
// differently from an existing-but-empty mapping.
type Headers struct {
	keys   []string
	values map[string]Value
}

// NewHeaders returns an empty header mapping.
func NewHeaders() *Headers {
	return &Headers{values: make(map[string]Value)}
}

// Set inserts or updates an entry. Updating keeps the entry's position.
// Names with embedded spaces are representable (the scanner joins multi-token
// names on read); the formatter quotes nothing in the name position, so
// keeping names space-free is on the caller.
func (h *Headers) Set(name string, v Value) error {
	if name == "" || !utf8.ValidString(name) {
		return &errors.NonStringHeaderNameError{Name: name}
	}
	if _, ok := h.values[name]; !ok {
		h.keys = append(h.keys, name)
	}
	h.values[name] = v
	return nil
}

// Get returns the value for name.
func (h *Headers) Get(name string) (Value, bool) {
	if h == nil {
		return Value{}, false
	}
	v, ok := h.values[name]
	return v, ok
}

// Has reports whether name is present.
func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Delete removes an entry, reporting whether it was present.
func (h *Headers) Delete(name string) bool {
	if _, ok := h.values[name]; !ok {
		return false
	}
	delete(h.values, name)
	for i, k := range h.keys {
		if k == name {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the entry names in insertion order.
func (h *Headers) Keys() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Len returns the number of entries.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.keys)
}

// Clone returns a deep copy. Cloning nil headers yields nil.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return nil
	}
	out := NewHeaders()
	for _, k := range h.keys {
		out.keys = append(out.keys, k)
		out.values[k] = h.values[k]
	}
	return out
}
