// Package compression is the extension-driven (de)compression shim wrapped
// around all file I/O of the TFS reader and writer. Detection is by path
// suffix only, never by content sniffing; compositions like .tar.gz layer
// the archive inside the compressor.
package compression

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	bzip2w "github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/pylhc/tfs-go/core/errors"
)

// suffixes recognized by the shim, each naming one stream layer.
var layerSuffixes = map[string]bool{
	".gz":  true,
	".bz2": true,
	".xz":  true,
	".zst": true,
	".tar": true,
	".zip": true,
}

// peel splits the recognized suffix chain off a path, innermost first.
// "table.tfs.tar.gz" yields ["tar", "gz"]; ".tgz" expands to tar+gz.
func peel(path string) []string {
	var exts []string
	for {
		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case ext == ".tgz":
			exts = append([]string{"tar", "gz"}, exts...)
		case layerSuffixes[ext]:
			exts = append([]string{ext[1:]}, exts...)
		default:
			return exts
		}
		// trim by length: ext is lowercased, the path may not be
		path = path[:len(path)-len(ext)]
	}
}

// memberName is the archive entry name for zip/tar layers: the base name
// with the whole suffix chain stripped.
func memberName(path string) string {
	base := filepath.Base(path)
	for {
		ext := strings.ToLower(filepath.Ext(base))
		if ext != ".tgz" && !layerSuffixes[ext] {
			return base
		}
		base = base[:len(base)-len(ext)]
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer // closed in reverse order
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenReader opens path for reading, layering the decompressors its suffix
// chain names. The returned closer releases every layer and the file handle.
func OpenReader(path string) (io.ReadCloser, error) {
	exts := peel(path)
	if len(exts) > 0 && exts[len(exts)-1] == "zip" {
		return openZipReader(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = f
	closers := []io.Closer{f}
	for i := len(exts) - 1; i >= 0; i-- {
		switch exts[i] {
		case "gz":
			gr, err := gzip.NewReader(r)
			if err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "open gzip stream %s", path)
			}
			closers = append(closers, gr)
			r = gr
		case "bz2":
			r = bzip2.NewReader(r)
		case "xz":
			xr, err := xz.NewReader(r)
			if err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "open xz stream %s", path)
			}
			r = xr
		case "zst":
			zr, err := zstd.NewReader(r)
			if err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "open zstd stream %s", path)
			}
			rc := zr.IOReadCloser()
			closers = append(closers, rc)
			r = rc
		case "tar":
			tr, err := firstTarMember(r)
			if err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "open tar archive %s", path)
			}
			r = tr
		}
	}
	return &readCloser{Reader: r, closers: closers}, nil
}

func firstTarMember(r io.Reader) (io.Reader, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg {
			return tr, nil
		}
	}
}

func openZipReader(path string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open zip archive %s", path)
	}
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			zr.Close()
			return nil, errors.Wrapf(err, "open zip member %s", member.Name)
		}
		return &readCloser{Reader: rc, closers: []io.Closer{zr, rc}}, nil
	}
	zr.Close()
	return nil, errors.Wrapf(errors.ErrFormat, "zip archive %s has no file members", path)
}

type writeCloser struct {
	io.Writer
	closers []io.Closer // closed in reverse order: compressors before the file
}

func (w *writeCloser) Close() error {
	var first error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// tarSink buffers the member body; tar headers need the size up front.
type tarSink struct {
	buf  bytes.Buffer
	name string
	dst  io.Writer
}

func (t *tarSink) Write(p []byte) (int, error) { return t.buf.Write(p) }

func (t *tarSink) Close() error {
	tw := tar.NewWriter(t.dst)
	hdr := &tar.Header{
		Name:    t.name,
		Mode:    0644,
		Size:    int64(t.buf.Len()),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.Copy(tw, &t.buf); err != nil {
		return err
	}
	return tw.Close()
}

// OpenWriter creates path for writing, layering the compressors its suffix
// chain names. The returned closer flushes and closes every layer.
func OpenWriter(path string) (io.WriteCloser, error) {
	exts := peel(path)
	if len(exts) > 0 && exts[len(exts)-1] == "zip" {
		return openZipWriter(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	var w io.Writer = f
	closers := []io.Closer{f}
	for i := len(exts) - 1; i >= 0; i-- {
		switch exts[i] {
		case "gz":
			gw := gzip.NewWriter(w)
			closers = append(closers, gw)
			w = gw
		case "bz2":
			bw, err := bzip2w.NewWriter(w, &bzip2w.WriterConfig{Level: bzip2w.DefaultCompression})
			if err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "open bzip2 stream %s", path)
			}
			closers = append(closers, bw)
			w = bw
		case "xz":
			xw, err := xz.NewWriter(w)
			if err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "open xz stream %s", path)
			}
			closers = append(closers, xw)
			w = xw
		case "zst":
			zw, err := zstd.NewWriter(w)
			if err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "open zstd stream %s", path)
			}
			closers = append(closers, zw)
			w = zw
		case "tar":
			ts := &tarSink{name: memberName(path), dst: w}
			closers = append(closers, ts)
			w = ts
		}
	}
	return &writeCloser{Writer: w, closers: closers}, nil
}

func openZipWriter(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	zw := zip.NewWriter(f)
	entry, err := zw.Create(memberName(path))
	if err != nil {
		zw.Close()
		f.Close()
		return nil, errors.Wrapf(err, "create zip member in %s", path)
	}
	return &writeCloser{Writer: entry, closers: []io.Closer{f, zw}}, nil
}
