package compression

import (
	"io"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPeel(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"table.tfs", nil},
		{"table.tfs.gz", []string{"gz"}},
		{"table.tfs.bz2", []string{"bz2"}},
		{"table.tfs.xz", []string{"xz"}},
		{"table.tfs.zst", []string{"zst"}},
		{"table.tfs.zip", []string{"zip"}},
		{"table.tfs.tar.gz", []string{"tar", "gz"}},
		{"table.tfs.tgz", []string{"tar", "gz"}},
		{"dir.gz/table.tfs", nil},
		{"TABLE.TFS.GZ", []string{"gz"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := peel(tt.path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("peel(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMemberName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/table.tfs.zip", "table.tfs"},
		{"/data/table.tfs.tar.gz", "table.tfs"},
		{"/data/table.tfs.tgz", "table.tfs"},
		{"table.tfs", "table.tfs"},
	}
	for _, tt := range tests {
		if got := memberName(tt.path); got != tt.want {
			t.Errorf("memberName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// Every writable layer chain must read back the exact bytes.
func TestRoundTrip(t *testing.T) {
	payload := []byte("@ TITLE %s \"compressed\"\n* A\n$ %d\n 1\n")
	names := []string{
		"t.tfs",
		"t.tfs.gz",
		"t.tfs.bz2",
		"t.tfs.xz",
		"t.tfs.zst",
		"t.tfs.zip",
		"t.tfs.tar",
		"t.tfs.tar.gz",
		"t.tfs.tgz",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := OpenWriter(path)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write(payload); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			r, err := OpenReader(path)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != string(payload) {
				t.Errorf("round trip of %s changed content:\n%q\nwant\n%q", name, got, payload)
			}
		})
	}
}

func TestOpenReaderMissingFile(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "absent.tfs.gz")); err == nil {
		t.Error("missing file opened")
	}
}
