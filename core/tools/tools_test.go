package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/reader"
	"github.com/pylhc/tfs-go/core/writer"
)

func TestSignificantDigits(t *testing.T) {
	tests := []struct {
		value, err           float64
		wantValue, wantError string
	}{
		// an error with leading digit 1 keeps one extra digit
		{0.637282, 0.001234, "0.6373", "0.0012"},
		{0.637282, 0.0134, "0.637", "0.013"},
		{0.637282, 0.010, "0.637", "0.010"},
		{3.14159, 0.5, "3.1", "0.5"},
		{123.456, 12, "123", "12"},
	}
	for _, tt := range tests {
		gotValue, gotError, err := SignificantDigits(tt.value, tt.err)
		if err != nil {
			t.Fatalf("SignificantDigits(%v, %v): %v", tt.value, tt.err, err)
		}
		if gotValue != tt.wantValue || gotError != tt.wantError {
			t.Errorf("SignificantDigits(%v, %v) = (%q, %q), want (%q, %q)",
				tt.value, tt.err, gotValue, gotError, tt.wantValue, tt.wantError)
		}
	}
}

func TestSignificantDigitsZeroError(t *testing.T) {
	if _, _, err := SignificantDigits(1.0, 0); err == nil {
		t.Error("zero error accepted")
	}
}

func TestRemoveNaNFromFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := frame.New(
		frame.NewStringColumn("NAME", []string{"keep", "drop", "keep2"}),
		frame.NewFloatColumn("S", []float64{0, 1, 2}),
	)
	if err != nil {
		t.Fatal(err)
	}
	// poke a null into the middle row through a rebuilt column
	f.DropColumn("S")
	sc := frame.NewFloatColumn("S", nil)
	sc.Append(0.0)  //nolint:errcheck
	sc.AppendNull() //nolint:errcheck
	sc.Append(2.0)  //nolint:errcheck
	if err := f.AddColumn(sc); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "table.tfs")
	if err := writer.Write(path, f, nil); err != nil {
		t.Fatal(err)
	}

	RemoveNaNFromFiles([]string{path}, false)

	out, err := reader.Read(path+".dropna", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	name, _ := out.Column("NAME")
	if s, _ := name.(*frame.StringColumn).At(1); s != "keep2" {
		t.Errorf("NAME[1] = %q, want keep2", s)
	}

	// replace mode overwrites in place
	RemoveNaNFromFiles([]string{path}, true)
	replaced, err := reader.Read(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if replaced.NumRows() != 2 {
		t.Errorf("in-place rows = %d, want 2", replaced.NumRows())
	}
}

func TestRemoveHeaderCommentsFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dirty.tfs")
	content := `@ TITLE %s "ok"
@ a stray comment line
* A
$ %d
 1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveHeaderCommentsFromFiles([]string{path}); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "stray") {
		t.Error("tagless header line survived")
	}
	if !strings.Contains(string(raw), "TITLE") {
		t.Error("tagged header line removed")
	}
	// the cleaned file must parse
	f, err := reader.Read(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.NumRows() != 1 {
		t.Errorf("rows = %d, want 1", f.NumRows())
	}
}
