// Package archivetest builds postgresql distribution fixtures (a zip holding
// an xz-compressed tarball) for tests of packages that consume them.
package archivetest

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
)

// Entry describes one tarball member. Entries with a trailing slash in Name
// are directories. A non-empty Symlink makes the entry a symbolic link and a
// non-empty Hardlink a hard link to that archive path.
type Entry struct {
	Name     string
	Body     string
	Mode     int64
	Symlink  string
	Hardlink string
}

// Member is a raw zip container member placed next to the tarball.
type Member struct {
	Name string
	Body []byte
}

// Tarball returns the uncompressed tar stream for entries.
func Tarball(tb testing.TB, entries []Entry) []byte {
	tb.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode}
		switch {
		case e.Symlink != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Symlink
		case e.Hardlink != "":
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = e.Hardlink
		case len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/':
			hdr.Typeflag = tar.TypeDir
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0o644
			if hdr.Typeflag == tar.TypeDir {
				hdr.Mode = 0o755
			}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			tb.Fatalf("write tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				tb.Fatalf("write tar body %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		tb.Fatalf("close tar writer: %v", err)
	}
	return buf.Bytes()
}

// Xz compresses data with the xz format.
func Xz(tb testing.TB, data []byte) []byte {
	tb.Helper()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		tb.Fatalf("create xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("xz write: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("close xz writer: %v", err)
	}
	return buf.Bytes()
}

// Zip builds a zip container with the given members in order.
func Zip(tb testing.TB, members ...Member) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.Name)
		if err != nil {
			tb.Fatalf("create zip member %s: %v", m.Name, err)
		}
		if _, err := w.Write(m.Body); err != nil {
			tb.Fatalf("write zip member %s: %v", m.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

// Package returns a complete distribution: a zip with a manifest member
// followed by postgres-test.txz holding entries.
func Package(tb testing.TB, entries []Entry) []byte {
	tb.Helper()

	return Zip(tb,
		Member{Name: "META-INF/MANIFEST.MF", Body: []byte("Manifest-Version: 1.0\n")},
		Member{Name: "postgres-test.txz", Body: Xz(tb, Tarball(tb, entries))},
	)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(tb testing.TB, path string, data []byte) {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}
