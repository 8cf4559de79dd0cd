package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/giantswarm/pgenv"
	"github.com/spf13/cobra"
)

// errMissingDatabaseDir is returned by start without --database-dir.
var errMissingDatabaseDir = errors.New("--database-dir (or PGENV_DATABASE_DIR) is required")

// buildRoot creates the root command with its subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	var logCloser io.Closer

	root := &cobra.Command{
		Use:   "pgenv",
		Short: "Run a local PostgreSQL server",
		Long: `pgenv downloads PostgreSQL binaries into a per-user cache, initializes a
data directory and runs the server until interrupted.

Every flag can also be set through a PGENV_<FLAG> environment variable
(e.g. PGENV_DATABASE_DIR) or a TOML file given with --config.

Examples:
  pgenv start --database-dir=./data/db --port=5432 --database=app
  pgenv start --database-dir=./data/db --persistent --migration-dir=./migrations --database=app
  pgenv purge`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags, err := loadGlobalFlags(cmd, globalFlags.ConfigPath)
			if err != nil {
				return err
			}
			logCloser, err = setupLogging(flags.LogLevel, flags.LogFile)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-file", "", "write logs to this file with rotation instead of stderr")

	root.AddCommand(
		createStartCommand(globalFlags),
		createPurgeCommand(globalFlags),
	)
	return root
}

// createStartCommand creates the start subcommand.
func createStartCommand(globalFlags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Set up and start a server, then wait for a signal",
		Long: `Download the binaries if needed, initialize the data directory, start the
server and print the connection URI of each --database. The server is
stopped and, unless --persistent is given, its data directory removed on
SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags, err := loadStartFlags(cmd, globalFlags.ConfigPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStart(ctx, flags, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("database-dir", "", "postgresql data directory (required)")
	f.String("cache-dir", "", "binaries cache directory (default: user cache dir)")
	f.Int("port", pgenv.DefaultPort, "port to listen on; 0 picks a free port")
	f.String("user", pgenv.DefaultUser, "superuser name")
	f.String("password", pgenv.DefaultPassword, "superuser password")
	f.String("auth-method", pgenv.DefaultAuthMethod.String(), "authentication method (password, md5, scram-sha-256)")
	f.String("pg-version", string(pgenv.DefaultVersion), "postgresql version, major (16) or full (16.2.0)")
	f.Bool("persistent", false, "keep the data directory on exit")
	f.Duration("timeout", pgenv.DefaultTimeout, "timeout of each initdb and pg_ctl call; 0 disables it")
	f.Duration("ready-timeout", pgenv.DefaultReadyTimeout, "how long to wait for the server to accept connections")
	f.String("migration-dir", "", "directory of *.sql files applied to each --database")
	f.StringSlice("database", nil, "database to create if missing (repeatable)")

	return cmd
}

// createPurgeCommand creates the purge subcommand.
func createPurgeCommand(globalFlags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove cached binaries",
		Long: `Remove the binaries cache of one version. Without --cache-dir the default
location below the user cache directory is purged.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags, err := loadPurgeFlags(cmd, globalFlags.ConfigPath)
			if err != nil {
				return err
			}
			return runPurge(cmd.Context(), flags, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("cache-dir", "", "binaries cache directory (default: user cache dir)")
	f.String("pg-version", string(pgenv.DefaultVersion), "postgresql version of the default cache directory")
	f.Duration("timeout", time.Minute, "how long to wait for the cache lock")

	return cmd
}

// knownVersions maps major versions to published package versions.
var knownVersions = map[string]pgenv.Version{
	"16": pgenv.V16,
	"15": pgenv.V15,
	"14": pgenv.V14,
	"13": pgenv.V13,
	"12": pgenv.V12,
}

// parseVersion accepts a major version or a full package version.
func parseVersion(s string) (pgenv.Version, error) {
	if s == "" {
		return "", errors.New("postgresql version must not be empty")
	}
	if v, ok := knownVersions[s]; ok {
		return v, nil
	}
	return pgenv.Version(s), nil
}

// parseAuthMethod maps an initdb method name to an AuthMethod.
func parseAuthMethod(s string) (pgenv.AuthMethod, error) {
	for _, m := range []pgenv.AuthMethod{pgenv.AuthPlain, pgenv.AuthMD5, pgenv.AuthScramSHA256} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown auth method %q (want password, md5 or scram-sha-256)", s)
}

// startOptions converts flags into server options. It validates the values
// the With* options would otherwise panic on.
func startOptions(flags StartFlags) ([]pgenv.Option, error) {
	if flags.DatabaseDir == "" {
		return nil, errMissingDatabaseDir
	}
	if flags.Port < 0 || flags.Port > 65535 {
		return nil, fmt.Errorf("port must be between 0 and 65535, got %d", flags.Port)
	}
	if flags.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", flags.Timeout)
	}
	if flags.User == "" || flags.Password == "" {
		return nil, errors.New("user and password must not be empty")
	}
	auth, err := parseAuthMethod(flags.AuthMethod)
	if err != nil {
		return nil, err
	}
	version, err := parseVersion(flags.Version)
	if err != nil {
		return nil, err
	}

	opts := []pgenv.Option{
		pgenv.WithDatabaseDir(flags.DatabaseDir),
		pgenv.WithPort(flags.Port),
		pgenv.WithUser(flags.User),
		pgenv.WithPassword(flags.Password),
		pgenv.WithAuthMethod(auth),
		pgenv.WithVersion(version),
		pgenv.WithPersistent(flags.Persistent),
		pgenv.WithTimeout(flags.Timeout),
	}
	if flags.CacheDir != "" {
		opts = append(opts, pgenv.WithCacheDir(flags.CacheDir))
	}
	if flags.MigrationDir != "" {
		opts = append(opts, pgenv.WithMigrationDir(flags.MigrationDir))
	}
	return opts, nil
}

// runStart provisions a server, prints its connection URIs to out and keeps
// it running until ctx is done.
func runStart(ctx context.Context, flags StartFlags, out io.Writer) error {
	opts, err := startOptions(flags)
	if err != nil {
		return err
	}
	srv, err := pgenv.New(opts...)
	if err != nil {
		return err
	}
	defer srv.Dispose()

	if err := srv.Setup(ctx); err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	if err := srv.WaitReady(ctx, flags.ReadyTimeout); err != nil {
		return err
	}

	if err := prepareDatabases(ctx, srv, flags.Databases); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "postgres listening on port %d\n", srv.Port())
	_, _ = fmt.Fprintln(out, srv.FullConnectionURI("postgres"))
	for _, name := range flags.Databases {
		_, _ = fmt.Fprintln(out, srv.FullConnectionURI(name))
	}

	<-ctx.Done()
	_, _ = fmt.Fprintln(out, "shutting down")

	// ctx is already done; stop on a fresh context so pg_ctl can run.
	stopCtx, cancel := context.WithTimeout(context.Background(), flags.Timeout+10*time.Second)
	defer cancel()
	return srv.Stop(stopCtx)
}

// prepareDatabases creates each missing database and applies migrations.
func prepareDatabases(ctx context.Context, srv pgenv.Server, names []string) error {
	for _, name := range names {
		exists, err := srv.DatabaseExists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			if err := srv.CreateDatabase(ctx, name); err != nil {
				return err
			}
		}
		if err := srv.Migrate(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// purgeTarget returns the cache directory purge removes.
func purgeTarget(flags PurgeFlags) (string, error) {
	if flags.CacheDir != "" {
		return flags.CacheDir, nil
	}
	version, err := parseVersion(flags.Version)
	if err != nil {
		return "", err
	}
	platform, err := pgenv.HostPlatform(version)
	if err != nil {
		return "", err
	}
	return pgenv.DefaultCacheDir(platform)
}

// runPurge removes the selected cache directory.
func runPurge(ctx context.Context, flags PurgeFlags, out io.Writer) error {
	dir, err := purgeTarget(flags)
	if err != nil {
		return err
	}
	if flags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.Timeout)
		defer cancel()
	}
	if err := pgenv.Purge(ctx, dir); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "purged %s\n", dir)
	return nil
}
