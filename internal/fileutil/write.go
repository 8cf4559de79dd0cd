package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/pgenv/internal/pgerr"
	"github.com/giantswarm/pgenv/internal/sentinel"
)

// ErrEmptyDst is returned when WriteFile is given no destination.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

const defaultFileMode os.FileMode = 0o644

// WriteOptions tunes WriteFile. The zero value writes in place with mode 0644.
type WriteOptions struct {
	Mode   *os.FileMode // permissions of dst, nil means 0644
	Sync   bool         // fsync before close
	Atomic bool         // write a sibling temp file and rename it over dst
}

func (o *WriteOptions) mode() os.FileMode {
	if o == nil || o.Mode == nil {
		return defaultFileMode
	}
	return *o.Mode
}

// WriteFile copies r into dst and returns the byte count. Missing parent
// directories are created. An atomic write fsyncs and renames, so readers see
// either the old file or the complete new one. Whatever was written is
// removed when any step fails.
//
// All failures, including a failing r, are pgerr.ErrWriteFile for dst.
func WriteFile(dst string, r io.Reader, opts *WriteOptions) (int64, error) {
	if dst == "" {
		return 0, ErrEmptyDst
	}
	if err := EnsureDirForFile(dst); err != nil {
		return 0, err
	}

	atomic := opts != nil && opts.Atomic
	w, err := openWriteTarget(dst, opts.mode(), atomic)
	if err != nil {
		return 0, pgerr.WithPath(pgerr.ErrWriteFile, dst, err)
	}

	n, err := io.Copy(w.f, r)
	if err == nil {
		err = w.commit(atomic || (opts != nil && opts.Sync))
	}
	if err != nil {
		w.abort()
		return n, pgerr.WithPath(pgerr.ErrWriteFile, dst, err)
	}
	return n, nil
}

// writeTarget is an open file that becomes dst once committed.
type writeTarget struct {
	f      *os.File
	path   string // file being written
	dst    string // final name
	closed bool
}

func openWriteTarget(dst string, mode os.FileMode, atomic bool) (*writeTarget, error) {
	var (
		f   *os.File
		err error
	)
	if atomic {
		f, err = os.CreateTemp(filepath.Dir(dst), ".tmp-write-*")
	} else {
		f, err = os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode) //nolint:gosec // G304: paths are derived from configured directories
	}
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	w := &writeTarget{f: f, path: f.Name(), dst: dst}
	// CreateTemp uses 0600 and O_CREATE leaves an existing file's mode alone.
	if err := f.Chmod(mode); err != nil {
		w.abort()
		return nil, fmt.Errorf("chmod: %w", err)
	}
	return w, nil
}

func (w *writeTarget) commit(sync bool) error {
	if sync {
		if err := w.f.Sync(); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}
	w.closed = true
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if w.path == w.dst {
		return nil
	}
	if err := os.Rename(w.path, w.dst); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// abort closes and removes the file being written.
func (w *writeTarget) abort() {
	if !w.closed {
		_ = w.f.Close()
	}
	_ = os.Remove(w.path)
}
