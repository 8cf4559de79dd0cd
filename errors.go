package pgenv

import (
	"github.com/giantswarm/pgenv/internal/fetch"
	"github.com/giantswarm/pgenv/internal/netutil"
	"github.com/giantswarm/pgenv/internal/pgerr"
)

// Error carries the structured details of a failure: its Kind (one of the
// sentinel errors below), the operation and path involved, and the
// underlying cause. Use errors.As to inspect it; errors.Is matches both the
// kind and the cause.
type Error = pgerr.Error

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrNoSystemCacheDirectory is returned by New when no cache directory
	// was configured and the operating system has no user cache directory.
	ErrNoSystemCacheDirectory = pgerr.ErrNoSystemCacheDirectory

	// ErrInvalidPackage is returned by Setup when the downloaded package has
	// no compressed postgresql tarball, or unpacking it did not produce
	// initdb.
	ErrInvalidPackage = pgerr.ErrInvalidPackage

	// ErrWriteFile is returned when a file could not be written.
	ErrWriteFile = pgerr.ErrWriteFile

	// ErrUnzipFile is returned when the downloaded package is not a valid zip.
	ErrUnzipFile = pgerr.ErrUnzipFile

	// ErrReadFile is returned when a file could not be read.
	ErrReadFile = pgerr.ErrReadFile

	// ErrDirCreation is returned by New when the cache or database directory
	// could not be created.
	ErrDirCreation = pgerr.ErrDirCreation

	// ErrUnpackFailure is returned when the postgresql tarball could not be
	// extracted.
	ErrUnpackFailure = pgerr.ErrUnpackFailure

	// ErrInitFailure is returned by Setup when initdb fails.
	ErrInitFailure = pgerr.ErrInitFailure

	// ErrStartFailure is returned by Start when pg_ctl start fails.
	ErrStartFailure = pgerr.ErrStartFailure

	// ErrStopFailure is returned by Stop when pg_ctl stop fails.
	ErrStopFailure = pgerr.ErrStopFailure

	// ErrCleanupFailure is returned when a file or directory could not be
	// removed.
	ErrCleanupFailure = pgerr.ErrCleanupFailure

	// ErrDownloadFailure is returned by Setup when the binaries package could
	// not be downloaded.
	ErrDownloadFailure = pgerr.ErrDownloadFailure

	// ErrSQL is returned by the database operations and WaitReady.
	ErrSQL = pgerr.ErrSQL

	// ErrMigration is returned by Migrate when a script fails.
	ErrMigration = pgerr.ErrMigration

	// ErrTimeout is wrapped together with the operation kind when initdb or
	// pg_ctl did not finish within the configured timeout.
	ErrTimeout = pgerr.ErrTimeout

	// ErrServerFailed is wrapped together with the operation kind when a
	// lifecycle method is called on a Server in StatusFailure.
	ErrServerFailed = pgerr.ErrServerFailed

	// ErrUnsupportedPlatform is returned by HostPlatform and New when no
	// binaries are published for the platform.
	ErrUnsupportedPlatform = fetch.ErrUnsupportedPlatform

	// ErrPortInUse is returned by New when another Server sharing the same
	// Registry already uses the configured port.
	ErrPortInUse = netutil.ErrPortInUse
)
