package pgerr

import "github.com/giantswarm/pgenv/internal/sentinel"

const (
	// ErrNoSystemCacheDirectory is returned when no cache directory was
	// configured and the operating system does not report a user cache root.
	ErrNoSystemCacheDirectory = sentinel.Error("system does not have a standard cache directory")

	// ErrInvalidPackage is returned when a downloaded archive does not contain
	// a compressed postgresql tarball.
	ErrInvalidPackage = sentinel.Error("invalid postgresql binaries package")

	// ErrWriteFile is returned when a file could not be created or written.
	ErrWriteFile = sentinel.Error("could not write file")

	// ErrUnzipFile is returned when the outer zip container is malformed.
	ErrUnzipFile = sentinel.Error("failed to unzip")

	// ErrReadFile is returned when a file could not be opened or read.
	ErrReadFile = sentinel.Error("could not read file")

	// ErrDirCreation is returned when a required directory could not be created.
	ErrDirCreation = sentinel.Error("failed to create directory")

	// ErrUnpackFailure is returned when the postgresql tarball could not be extracted.
	ErrUnpackFailure = sentinel.Error("failed to unpack postgresql binaries")

	// ErrInitFailure is returned when initdb fails or times out.
	ErrInitFailure = sentinel.Error("failed to initialize postgresql database")

	// ErrStartFailure is returned when pg_ctl start fails or times out.
	ErrStartFailure = sentinel.Error("postgresql could not be started")

	// ErrStopFailure is returned when pg_ctl stop fails or times out.
	ErrStopFailure = sentinel.Error("postgresql could not be stopped")

	// ErrCleanupFailure is returned when an intermediate or owned file could
	// not be removed.
	ErrCleanupFailure = sentinel.Error("failed to remove")

	// ErrDownloadFailure is returned when the binaries archive could not be fetched.
	ErrDownloadFailure = sentinel.Error("download failure")

	// ErrSQL is returned when the SQL client reports a failure.
	ErrSQL = sentinel.Error("sql error")

	// ErrMigration is returned when a migration script fails.
	ErrMigration = sentinel.Error("migration error")

	// ErrTimeout is the cause attached to an operation kind when the
	// subprocess did not finish within the configured timeout.
	ErrTimeout = sentinel.Error("operation timed out")

	// ErrServerFailed is the cause attached to an operation kind when the
	// server already reached the terminal failure state.
	ErrServerFailed = sentinel.Error("server is in failure state")
)
