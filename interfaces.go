package pgenv

import (
	"context"
	"time"
)

// Server is one local postgresql instance.
//
// Callers must follow this lifecycle ordering:
//
//	New → Setup → Start → (database operations) → Stop → Dispose
//
// Stop and Start may be repeated. Dispose is safe to call at any point,
// including before Setup, and more than once. Lifecycle methods are
// serialized; Status, Port, CacheDir and FullConnectionURI may be called
// concurrently with them.
//
// A failing initdb or pg_ctl moves the Server to StatusFailure. The state is
// terminal: Setup, Start and Stop then return an error wrapping their kind
// and ErrServerFailed.
type Server interface {
	// Setup downloads and unpacks the binaries unless they are cached,
	// writes the password file and runs initdb unless the database
	// directory is already initialized. It only acts on a Server in
	// StatusUninitialized and is a no-op afterwards.
	//
	// Download failures return ErrDownloadFailure and leave the status
	// unchanged, so Setup may be retried. initdb failures return
	// ErrInitFailure.
	Setup(ctx context.Context) error

	// Start runs pg_ctl start and returns once pg_ctl reports the server
	// running. Starting a started Server is a no-op. Returns
	// ErrStartFailure on failure, wrapping ErrTimeout when the configured
	// timeout expired.
	Start(ctx context.Context) error

	// Stop runs pg_ctl stop on a started Server. In any other non-failed
	// status it is a no-op. Returns ErrStopFailure on failure.
	Stop(ctx context.Context) error

	// Dispose stops a started server and, unless WithPersistent was given,
	// removes the database directory and password file. A default cache
	// directory created by this Server is purged once no other Server of
	// the same Registry uses it. Failures are logged, never returned.
	Dispose()

	// Status returns the current lifecycle status.
	Status() Status

	// AcquisitionStatus returns the download status of this Server's cache
	// directory in its Registry.
	AcquisitionStatus() AcquisitionStatus

	// Port returns the port the server listens on. When no port was
	// configured this is the port allocated by New.
	Port() int

	// CacheDir returns the absolute directory holding the binaries.
	CacheDir() string

	// DatabaseDir returns the absolute postgresql data directory.
	DatabaseDir() string

	// FullConnectionURI returns
	// postgres://<user>:<password>@localhost:<port>/<database>.
	FullConnectionURI(database string) string

	// WaitReady blocks until the server accepts connections or timeout
	// expires. pg_ctl start -w already waits; WaitReady is for callers
	// that connect right after a restart. Returns ErrSQL on timeout.
	WaitReady(ctx context.Context, timeout time.Duration) error

	// DatabaseExists reports whether the named database exists.
	DatabaseExists(ctx context.Context, name string) (bool, error)

	// CreateDatabase creates the named database. Returns ErrSQL on failure,
	// including when the database already exists.
	CreateDatabase(ctx context.Context, name string) error

	// DropDatabase drops the named database if it exists.
	DropDatabase(ctx context.Context, name string) error

	// Migrate runs every *.sql file of the migration directory against the
	// named database in file name order and stops at the first failure
	// (ErrMigration). Files ending in .down.sql are skipped. Without
	// WithMigrationDir it does nothing.
	Migrate(ctx context.Context, database string) error
}
