// Package pgenv runs a local PostgreSQL server inside another Go program,
// typically an integration test suite or a development tool.
//
// pgenv downloads precompiled binaries from Maven
// (io.zonky.test.postgres:embedded-postgres-binaries), unpacks them into a
// per-user cache, initializes a data directory with initdb and drives the
// server with pg_ctl.
//
// # Basic Usage
//
//	import "github.com/giantswarm/pgenv"
//
//	ctx := context.Background()
//
//	srv, err := pgenv.New(pgenv.WithDatabaseDir("testdata/db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Dispose()
//
//	if err := srv.Setup(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := srv.CreateDatabase(ctx, "app"); err != nil {
//	    log.Fatal(err)
//	}
//	db, err := sql.Open("pgx", srv.FullConnectionURI("app"))
//
// # Binaries Cache
//
// Binaries are cached below os.UserCacheDir in pgenv/<os>/<arch>/<version>
// and shared by every Server and every process of the user. Concurrent
// Servers of one Registry download a package at most once; separate
// processes coordinate with a lock file next to the cache directory. Use
// WithCacheDir to keep binaries elsewhere and Purge to remove them.
//
// # Lifecycle
//
// A Server moves through Uninitialized, Initializing, Initialized, Starting,
// Started, Stopping and Stopped. A stopped Server can be started again. A
// failing initdb or pg_ctl leaves it in StatusFailure for good; dispose it
// and create a new one.
//
// Unless WithPersistent is given, Dispose removes the database directory,
// so a Server created with the same directory starts from an empty cluster.
// With WithPersistent, a later Setup finds the PG_VERSION marker and skips
// initdb.
//
// # Errors
//
// Every failure wraps one of the Err* sentinels and can be inspected with
// errors.Is. Errors from lifecycle and file operations are *Error values
// carrying the operation and path:
//
//	var pe *pgenv.Error
//	if errors.As(err, &pe) && errors.Is(err, pgenv.ErrTimeout) {
//	    log.Printf("%s timed out", pe.Op)
//	}
//
// # Logging
//
// pgenv logs through log/slog. See SetLogger.
package pgenv
