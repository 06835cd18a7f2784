// Command tfs is the CLI for working with Table File System files: inspect
// headers, validate against MAD-X or MAD-NG rules, convert between
// compression layers and storage backends, and run file hygiene tools.
package main

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/pylhc/tfs-go/core/arrowio"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/reader"
	"github.com/pylhc/tfs-go/core/sqlite"
	"github.com/pylhc/tfs-go/core/tools"
	"github.com/pylhc/tfs-go/core/types"
	"github.com/pylhc/tfs-go/core/validate"
	"github.com/pylhc/tfs-go/core/writer"
	"github.com/pylhc/tfs-go/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for tfs.
var CLI struct {
	LogLevel string `name:"log-level" default:"info" help:"Log level (debug, info, warn, error)"`

	Headers       HeadersCmd       `cmd:"" help:"Print the header block of a TFS file"`
	Validate      ValidateCmd      `cmd:"" help:"Validate a TFS file against a compatibility profile"`
	Convert       ConvertGroup     `cmd:"" help:"Convert between text, Arrow and SQLite representations"`
	Dropna        DropnaCmd        `cmd:"" help:"Drop rows containing missing values"`
	StripComments StripCommentsCmd `cmd:"" help:"Remove tagless header lines from files in place"`
	Round         RoundCmd         `cmd:"" help:"Round a value to the significant digits of its error"`
	Version       VersionCmd       `cmd:"" help:"Print version information"`
}

// ConvertGroup contains representation conversions.
type ConvertGroup struct {
	File   FileConvertCmd `cmd:"" help:"Rewrite a TFS file, recompressing per the output extension"`
	Arrow  ArrowCmd       `cmd:"" help:"Convert between TFS and Arrow IPC files"`
	Sqlite SqliteCmd      `cmd:"" help:"Move a table between a TFS file and a SQLite database"`
}

// HeadersCmd prints the header entries of a file in order.
type HeadersCmd struct {
	Path string `arg:"" help:"TFS file to read" type:"existingfile"`
}

func (c *HeadersCmd) Run() error {
	headers, err := reader.ReadHeaders(c.Path)
	if err != nil {
		return err
	}
	for _, name := range headers.Keys() {
		v, _ := headers.Get(name)
		tag, err := types.KindToTag(v.Kind())
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s\n", name, tag, headerDisplay(v))
	}
	return nil
}

func headerDisplay(v frame.Value) string {
	switch v.Kind() {
	case types.String:
		return v.Str()
	case types.Int:
		return strconv.FormatInt(v.Int(), 10)
	case types.Float:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case types.Bool:
		return strconv.FormatBool(v.Bool())
	case types.Complex:
		return frame.FormatComplex(v.Complex())
	}
	return "nil"
}

// ValidateCmd loads a file and runs the validation engine over it.
type ValidateCmd struct {
	Path    string `arg:"" help:"TFS file to validate" type:"existingfile"`
	Profile string `default:"madx" help:"Compatibility profile (none, madx, madng)"`
	Raise   bool   `help:"Treat duplicate indices and columns as errors instead of warnings"`
}

func (c *ValidateCmd) Run() error {
	profile, err := validate.ParseProfile(c.Profile)
	if err != nil {
		return err
	}
	policy := validate.PolicyWarn
	if c.Raise {
		policy = validate.PolicyRaise
	}
	f, err := reader.Read(c.Path, &reader.Options{})
	if err != nil {
		return err
	}
	if err := validate.Validate(f, c.Path, policy, profile); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d rows, %d columns, %d headers)\n",
		c.Path, f.NumRows(), f.NumCols(), f.Headers().Len())
	return nil
}

// FileConvertCmd reads a file and writes it back out; the output extension
// chain picks the compression layers.
type FileConvertCmd struct {
	In       string `arg:"" help:"Input TFS file" type:"existingfile"`
	Out      string `arg:"" help:"Output TFS file" type:"path"`
	ColWidth int    `name:"col-width" help:"Data column width (default 20, floor 10)"`
}

func (c *FileConvertCmd) Run() error {
	f, err := reader.Read(c.In, nil)
	if err != nil {
		return err
	}
	opts := &writer.Options{ColWidth: c.ColWidth}
	if f.Index() != nil {
		opts.SaveIndex = true
	}
	return writer.Write(c.Out, f, opts)
}

// ArrowCmd converts between the text format and Arrow IPC, direction picked
// by the --reverse flag.
type ArrowCmd struct {
	In      string `arg:"" help:"Input file" type:"existingfile"`
	Out     string `arg:"" help:"Output file" type:"path"`
	Reverse bool   `help:"Convert Arrow IPC back to TFS text"`
}

func (c *ArrowCmd) Run() error {
	if c.Reverse {
		f, err := arrowio.Read(c.In)
		if err != nil {
			return err
		}
		opts := &writer.Options{}
		if f.Index() != nil {
			opts.SaveIndex = true
		}
		return writer.Write(c.Out, f, opts)
	}
	f, err := reader.Read(c.In, nil)
	if err != nil {
		return err
	}
	return arrowio.Write(c.Out, f)
}

// SqliteCmd exports a TFS file into a database table or imports it back.
type SqliteCmd struct {
	File    string `arg:"" help:"TFS file" type:"path"`
	DB      string `arg:"" name:"db" help:"SQLite database path" type:"path"`
	Table   string `default:"tfs" help:"Table name"`
	Reverse bool   `help:"Import the table back into the TFS file"`
}

func (c *SqliteCmd) Run() error {
	if c.Reverse {
		f, err := sqlite.Import(c.DB, c.Table)
		if err != nil {
			return err
		}
		opts := &writer.Options{}
		if f.Index() != nil {
			opts.SaveIndex = true
		}
		return writer.Write(c.File, f, opts)
	}
	f, err := reader.Read(c.File, nil)
	if err != nil {
		return err
	}
	return sqlite.Export(c.DB, c.Table, f)
}

// DropnaCmd removes missing-value rows from files.
type DropnaCmd struct {
	Paths   []string `arg:"" help:"TFS files to sanitize" type:"existingfile"`
	Replace bool     `help:"Overwrite the files instead of writing .dropna copies"`
}

func (c *DropnaCmd) Run() error {
	tools.RemoveNaNFromFiles(c.Paths, c.Replace)
	return nil
}

// StripCommentsCmd removes header lines without a type tag, in place.
type StripCommentsCmd struct {
	Paths []string `arg:"" help:"TFS files to clean" type:"existingfile"`
}

func (c *StripCommentsCmd) Run() error {
	return tools.RemoveHeaderCommentsFromFiles(c.Paths)
}

// RoundCmd rounds a value and its error to the error's significant digits.
type RoundCmd struct {
	Value float64 `arg:"" help:"Value to round"`
	Error float64 `arg:"" help:"Error of the value"`
}

func (c *RoundCmd) Run() error {
	value, errStr, err := tools.SignificantDigits(c.Value, c.Error)
	if err != nil {
		return err
	}
	fmt.Printf("%s +- %s\n", value, errStr)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("tfs version %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tfs"),
		kong.Description("Table File System codec and tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.FormatText)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
