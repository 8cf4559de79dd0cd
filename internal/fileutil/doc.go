// Package fileutil provides file operation utilities for directory and file management.
//
// EnsureDir creates directories recursively, WriteFile streams a reader into
// a file with explicit permissions, optional fsync and atomic
// temp-file-then-rename, and Exists/Remove wrap the common stat and delete
// idioms. They are used for preparing cache and database directories,
// writing downloaded archives, password files and version markers, and
// tearing those down again.
package fileutil
