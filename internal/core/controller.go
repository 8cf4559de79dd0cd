package core

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/giantswarm/pgenv/internal/bincache"
	"github.com/giantswarm/pgenv/internal/database"
	"github.com/giantswarm/pgenv/internal/fileutil"
	"github.com/giantswarm/pgenv/internal/pgerr"
	"github.com/giantswarm/pgenv/internal/process"
)

// DefaultDisposeStopTimeout bounds the pg_ctl stop issued by Dispose when no
// Timeout is configured.
const DefaultDisposeStopTimeout = 10 * time.Second

// readyPollInterval is the interval between readiness pings in WaitReady.
const readyPollInterval = 100 * time.Millisecond

// passwordFileMode keeps the password file private to the current user.
const passwordFileMode = 0o600

// postmasterPIDName is the file a running server keeps in its data directory.
const postmasterPIDName = "postmaster.pid"

// Controller owns one postgresql instance.
//
// Lifecycle methods (Setup, Start, Stop, Dispose) are serialized by an
// internal mutex. Status, Paths, Port and FullConnectionURI may be called
// concurrently with them.
type Controller struct {
	cfg   Config
	paths Paths
	port  int

	// createdCache is true when CacheDir was not configured and the default
	// location did not exist before this controller created it.
	createdCache bool

	// opMu serializes lifecycle operations.
	opMu sync.Mutex

	statusMu sync.Mutex
	status   Status

	disposeOnce sync.Once

	db  *database.Client
	log *slog.Logger
}

// NewController validates cfg, derives the instance paths, reserves the port
// and creates the cache and database directories.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	paths, err := derivePaths(cfg)
	if err != nil {
		return nil, err
	}

	cacheExisted, err := fileutil.Exists(paths.CacheDir)
	if err != nil {
		return nil, pgerr.WithPath(pgerr.ErrDirCreation, paths.CacheDir, err)
	}
	if err := fileutil.EnsureDir(paths.CacheDir); err != nil {
		return nil, err
	}
	if err := fileutil.EnsureDir(paths.DatabaseDir); err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		if port, err = cfg.Ports.AllocatePort(); err != nil {
			return nil, fmt.Errorf("allocate port: %w", err)
		}
	} else if err := cfg.Ports.Reserve(port); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:          cfg,
		paths:        paths,
		port:         port,
		createdCache: cfg.CacheDir == "" && !cacheExisted,
		log:          Logger().With("database_dir", paths.DatabaseDir, "port", port),
	}
	c.db = database.NewClient(c.FullConnectionURI, c.log)
	cfg.Registry.Retain(paths.CacheDir)

	c.log.Debug("controller created", "cache_dir", paths.CacheDir, "platform", cfg.Platform.String())
	return c, nil
}

// Status returns the current lifecycle status.
func (c *Controller) Status() Status {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.status
}

// setStatus records s and notifies the listener outside statusMu.
func (c *Controller) setStatus(s Status) {
	c.statusMu.Lock()
	from := c.status
	c.status = s
	c.statusMu.Unlock()

	if from == s {
		return
	}
	c.log.Debug("status changed", "from", from.String(), "to", s.String())
	if c.cfg.StatusListener != nil {
		c.cfg.StatusListener(from, s)
	}
}

// Paths returns the instance's file layout.
func (c *Controller) Paths() Paths {
	return c.paths
}

// Port returns the port the server listens on.
func (c *Controller) Port() int {
	return c.port
}

// AcquisitionStatus returns the binaries cache status for this instance's
// cache directory.
func (c *Controller) AcquisitionStatus() bincache.Status {
	return c.cfg.Registry.Status(c.paths.CacheDir)
}

// FullConnectionURI returns the URI for database on this server:
// postgres://<user>:<password>@localhost:<port>/<database>.
func (c *Controller) FullConnectionURI(database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.cfg.User, c.cfg.Password),
		Host:   net.JoinHostPort("localhost", strconv.Itoa(c.port)),
		Path:   "/" + database,
	}
	return u.String()
}

// failedErr is returned by lifecycle calls on a controller in StatusFailure.
func failedErr(op process.Operation) error {
	return &pgerr.Error{Kind: op.FailureKind(), Op: op.String(), Err: pgerr.ErrServerFailed}
}

// Setup makes sure the binaries are cached, writes the password file and
// initializes the data directory unless its version marker already exists.
//
// Setup only acts from StatusUninitialized; later states make it a no-op.
// A failed acquisition leaves the status unchanged so Setup may be retried.
func (c *Controller) Setup(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	switch c.Status() {
	case StatusUninitialized:
	case StatusFailure:
		return failedErr(process.OpInitDB)
	default:
		return nil
	}

	loc := bincache.Location{
		CacheDir:    c.paths.CacheDir,
		ArchivePath: c.paths.Archive,
		MarkerPath:  c.paths.InitDB,
	}
	fetchFn := func(ctx context.Context) ([]byte, error) {
		c.log.Info("downloading postgresql binaries", "platform", c.cfg.Platform.String(), "version", string(c.cfg.Platform.Version))
		return c.cfg.Fetcher.Fetch(ctx, c.cfg.Platform)
	}
	if err := c.cfg.Registry.EnsureAcquired(ctx, loc, fetchFn); err != nil {
		return err
	}

	mode := os.FileMode(passwordFileMode)
	if _, err := fileutil.WriteFile(c.paths.PasswordFile, strings.NewReader(c.cfg.Password),
		&fileutil.WriteOptions{Mode: &mode, Atomic: true}); err != nil {
		return err
	}

	initialized, err := fileutil.Exists(c.paths.VersionMarker)
	if err != nil {
		return pgerr.WithPath(pgerr.ErrReadFile, c.paths.VersionMarker, err)
	}
	if initialized {
		c.log.Info("database directory already initialized")
		c.setStatus(StatusInitialized)
		return nil
	}

	if err := c.run(ctx, process.OpInitDB, c.paths.InitDB,
		"-A", c.cfg.AuthMethod.String(),
		"-U", c.cfg.User,
		"-D", c.paths.DatabaseDir,
		"--pwfile="+c.paths.PasswordFile,
	); err != nil {
		return err
	}

	return c.ensureVersionMarker()
}

// ensureVersionMarker writes the version marker if initdb did not.
func (c *Controller) ensureVersionMarker() error {
	ok, err := fileutil.Exists(c.paths.VersionMarker)
	if err != nil {
		return pgerr.WithPath(pgerr.ErrReadFile, c.paths.VersionMarker, err)
	}
	if ok {
		return nil
	}
	major, _, _ := strings.Cut(string(c.cfg.Platform.Version), ".")
	_, err = fileutil.WriteFile(c.paths.VersionMarker, strings.NewReader(major+"\n"), nil)
	return err
}

// Start runs pg_ctl start and waits for it to report the server running.
// It is a no-op when the server is already started.
func (c *Controller) Start(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	switch c.Status() {
	case StatusStarted:
		return nil
	case StatusFailure:
		return failedErr(process.OpStart)
	}

	return c.run(ctx, process.OpStart, c.paths.PgCtl,
		"start", "-w",
		"-D", c.paths.DatabaseDir,
		"-o", fmt.Sprintf("-F -p %d", c.port),
		"-l", c.paths.LogFile,
	)
}

// Stop runs pg_ctl stop for a started server. From any other non-failed
// status it is a no-op.
func (c *Controller) Stop(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.stopLocked(ctx)
}

func (c *Controller) stopLocked(ctx context.Context) error {
	switch c.Status() {
	case StatusStarted:
	case StatusFailure:
		return failedErr(process.OpStop)
	default:
		return nil
	}

	return c.run(ctx, process.OpStop, c.paths.PgCtl,
		"stop", "-w",
		"-D", c.paths.DatabaseDir,
	)
}

// run executes op through the command executor, moving through the
// operation's entry and exit statuses. Any failure is terminal.
func (c *Controller) run(ctx context.Context, op process.Operation, path string, args ...string) error {
	t := transitions[op]
	c.setStatus(t.entry)

	err := process.Run(ctx, process.Command{
		Op:      op,
		Path:    path,
		Args:    args,
		Timeout: c.cfg.Timeout,
		Logger:  c.log,
	})
	if err != nil {
		c.setStatus(StatusFailure)
		c.log.Error("postgresql command failed", "op", op.String(), "error", err)
		return err
	}

	c.setStatus(t.exit)
	c.log.Info("postgresql command succeeded", "op", op.String())
	return nil
}

// Dispose releases the instance: it stops a started server, removes the data
// directory, password file and server log unless Persistent is set, purges a
// default cache location this controller created once no other controller
// uses it, and frees the port. Failures are logged, never returned. Dispose
// is idempotent.
func (c *Controller) Dispose() {
	c.disposeOnce.Do(c.dispose)
}

func (c *Controller) dispose() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultDisposeStopTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if c.Status() == StatusFailure {
		c.stopAfterFailure(ctx)
	} else if err := c.stopLocked(ctx); err != nil {
		c.log.Warn("failed to stop server during dispose", "error", err)
	}

	if !c.cfg.Persistent {
		for _, remove := range []func() error{
			func() error { return fileutil.RemoveAll(c.paths.DatabaseDir) },
			func() error { return fileutil.Remove(c.paths.PasswordFile) },
			func() error { return fileutil.Remove(c.paths.LogFile) },
		} {
			if err := remove(); err != nil {
				c.log.Warn("cleanup failed during dispose", "error", err)
			}
		}
	}

	remaining := c.cfg.Registry.Release(c.paths.CacheDir)
	if !c.cfg.Persistent && c.createdCache && remaining == 0 {
		if err := c.cfg.Registry.Purge(ctx, c.paths.CacheDir); err != nil {
			c.log.Warn("failed to purge binaries cache during dispose", "error", err)
		}
	}

	c.cfg.Ports.Release(c.port)
	c.log.Debug("controller disposed", "persistent", c.cfg.Persistent)
}

// stopAfterFailure shuts down a postmaster left behind by a failed or timed
// out pg_ctl call. pg_ctl starts the server in its own session, so killing
// pg_ctl's process group does not reach it. The status stays Failure.
func (c *Controller) stopAfterFailure(ctx context.Context) {
	pidFile := filepath.Join(c.paths.DatabaseDir, postmasterPIDName)
	running, err := fileutil.Exists(pidFile)
	if err != nil || !running {
		return
	}

	c.log.Info("stopping server left running after failure", "pid_file", pidFile)
	err = process.Run(ctx, process.Command{
		Op:      process.OpStop,
		Path:    c.paths.PgCtl,
		Args:    []string{"stop", "-m", "immediate", "-w", "-D", c.paths.DatabaseDir},
		Timeout: c.cfg.Timeout,
		Logger:  c.log,
	})
	if err != nil {
		c.log.Warn("failed to stop server during dispose", "error", err)
	}
}

// WaitReady polls the server until it accepts connections to the
// administrative database or timeout expires.
func (c *Controller) WaitReady(ctx context.Context, timeout time.Duration) error {
	err := process.WaitReady(ctx, process.WaitReadyConfig{
		Interval: readyPollInterval,
		Timeout:  timeout,
		Name:     "postgres",
		Target:   net.JoinHostPort("localhost", strconv.Itoa(c.port)),
		Logger:   c.log,
	}, func(ctx context.Context, attempt int) (bool, error) {
		if err := c.db.Ping(ctx); err != nil {
			c.log.Debug("server not ready", "attempt", attempt, "error", err)
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return &pgerr.Error{Kind: pgerr.ErrSQL, Op: "wait ready", Err: err}
	}
	return nil
}

// DatabaseExists reports whether the named database exists on the server.
func (c *Controller) DatabaseExists(ctx context.Context, name string) (bool, error) {
	return c.db.Exists(ctx, name)
}

// CreateDatabase creates the named database.
func (c *Controller) CreateDatabase(ctx context.Context, name string) error {
	return c.db.Create(ctx, name)
}

// DropDatabase drops the named database if it exists.
func (c *Controller) DropDatabase(ctx context.Context, name string) error {
	return c.db.Drop(ctx, name)
}

// Migrate applies the configured migration directory to the named database.
// Without a MigrationDir it does nothing.
func (c *Controller) Migrate(ctx context.Context, name string) error {
	if c.cfg.MigrationDir == "" {
		return nil
	}
	return c.db.Migrate(ctx, name, c.cfg.MigrationDir)
}
