package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/pgenv/internal/pgerr"
)

// EnsureDir creates a directory and all parent directories if they don't exist.
// Uses mode 0755. Returns nil if directory already exists. Failures are
// reported as pgerr.ErrDirCreation for path.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return pgerr.WithPath(pgerr.ErrDirCreation, path, err)
	}
	return nil
}

// EnsureDirForFile creates the parent directory of filePath if it does not
// already exist, ensuring the file can be created without a missing-directory error.
func EnsureDirForFile(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// Exists reports whether path exists. Errors other than "not exist" (for
// example permission denied on a parent) are returned to the caller.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Remove deletes a single file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pgerr.WithPath(pgerr.ErrCleanupFailure, path, err)
	}
	return nil
}

// RemoveAll deletes path and everything below it. A missing path is not an error.
func RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return pgerr.WithPath(pgerr.ErrCleanupFailure, path, err)
	}
	return nil
}
