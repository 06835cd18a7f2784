// Package collection lazily maps named file templates to frames in one
// directory. Frames are read on first access and buffered; assignments are
// buffered too and only reach disk on Flush, unless write-through is enabled.
package collection

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pylhc/tfs-go/core/cache"
	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/reader"
	"github.com/pylhc/tfs-go/core/validate"
	"github.com/pylhc/tfs-go/core/writer"
	"github.com/pylhc/tfs-go/internal/logging"
)

// Planes a two-plane item expands to.
var Planes = []string{"x", "y"}

// Item declares one file of a collection. A two-plane template contains a
// "{}" placeholder and expands to one entry per plane.
type Item struct {
	Template  string
	TwoPlanes bool
}

// Definition maps attribute names to items. This is the explicit counterpart
// of the historical reflection-driven property layer: given a name template
// it produces plain accessors, nothing is synthesized at runtime.
type Definition map[string]Item

// Collection lazily loads and writes the TFS files of one directory.
type Collection struct {
	dir        string
	defs       Definition
	index      string // column promoted to row index on every read
	allowWrite bool
	buffer     *cache.FrameCache
	dirty      map[string]*frame.Frame
}

// New builds a collection over dir. The index column, when non-empty, is
// promoted on every read.
func New(dir string, defs Definition, index string) *Collection {
	return &Collection{
		dir:    dir,
		defs:   defs,
		index:  index,
		buffer: cache.NewDefaultFrameCache(),
		dirty:  make(map[string]*frame.Frame),
	}
}

// SetAllowWrite toggles write-through: when enabled, assignments are written
// to disk immediately instead of waiting for Flush.
func (c *Collection) SetAllowWrite(allow bool) { c.allowWrite = allow }

// DefinedNames returns the expanded entry names, sorted. Two-plane items
// appear once per plane with a "_<plane>" suffix.
func (c *Collection) DefinedNames() []string {
	var names []string
	for name, item := range c.defs {
		if item.TwoPlanes {
			for _, p := range Planes {
				names = append(names, name+"_"+p)
			}
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filename resolves an entry name to its file name within the directory.
func (c *Collection) Filename(name string) (string, error) {
	for defName, item := range c.defs {
		if !item.TwoPlanes {
			if name == defName {
				return item.Template, nil
			}
			continue
		}
		for _, p := range Planes {
			if name == defName+"_"+p {
				return strings.ReplaceAll(item.Template, "{}", p), nil
			}
		}
	}
	return "", &errors.KeyNotFoundError{Key: name}
}

// Get returns the frame for an entry name, reading it on first access.
func (c *Collection) Get(name string) (*frame.Frame, error) {
	filename, err := c.Filename(name)
	if err != nil {
		return nil, err
	}
	if f, ok := c.dirty[filename]; ok {
		return f, nil
	}
	if f, ok := c.buffer.Get(filename); ok {
		return f, nil
	}
	path := filepath.Join(c.dir, filename)
	logging.Debug("collection loading file", "path", path)
	f, err := reader.Read(path, &reader.Options{Index: c.index})
	if err != nil {
		return nil, err
	}
	c.buffer.Put(filename, f)
	return f, nil
}

// MaybeGet returns the frame for name, reporting false instead of an error
// when the file is absent or unreadable.
func (c *Collection) MaybeGet(name string) (*frame.Frame, bool) {
	f, err := c.Get(name)
	if err != nil {
		return nil, false
	}
	return f, true
}

// Set buffers a frame under an entry name. With write-through enabled the
// file is written immediately; otherwise it stays dirty until Flush.
func (c *Collection) Set(name string, f *frame.Frame) error {
	filename, err := c.Filename(name)
	if err != nil {
		return err
	}
	if c.allowWrite {
		if err := c.writeFile(filename, f); err != nil {
			return err
		}
		c.buffer.Put(filename, f)
		return nil
	}
	c.dirty[filename] = f
	return nil
}

// Flush writes every dirty frame to disk and moves it to the clean buffer.
func (c *Collection) Flush() error {
	for filename, f := range c.dirty {
		if err := c.writeFile(filename, f); err != nil {
			return err
		}
		c.buffer.Put(filename, f)
		delete(c.dirty, filename)
	}
	return nil
}

// PendingWrites returns the filenames buffered but not yet flushed, sorted.
func (c *Collection) PendingWrites() []string {
	var names []string
	for filename := range c.dirty {
		names = append(names, filename)
	}
	sort.Strings(names)
	return names
}

func (c *Collection) writeFile(filename string, f *frame.Frame) error {
	path := filepath.Join(c.dir, filename)
	logging.Debug("collection writing file", "path", path)
	opts := &writer.Options{Profile: validate.ProfileNone}
	if f.Index() != nil {
		// write the index back under its own name so a re-read with the
		// collection's index setting promotes it again
		if name := f.Index().Name(); name != "" {
			opts.IndexName = name
		} else {
			opts.SaveIndex = true
		}
	}
	return writer.Write(path, f, opts)
}
