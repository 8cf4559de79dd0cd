package pgenv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/giantswarm/pgenv/internal/bincache"
	"github.com/giantswarm/pgenv/internal/core"
	"github.com/giantswarm/pgenv/internal/fetch"
	"github.com/giantswarm/pgenv/internal/netutil"
)

// Singleton state for DefaultRegistry.
//
// singletonMu protects both singletonReg and singletonOnce so that
// resetForTesting (used in tests) is concurrency-safe with DefaultRegistry.
var (
	singletonMu   sync.Mutex
	singletonReg  *Registry
	singletonOnce sync.Once
)

// Compile-time interface satisfaction check.
var _ Server = (*serverWrapper)(nil)

// Registry is the state Servers share: which cache directories have been
// acquired, how many Servers use each of them, and which ports are taken.
// Servers of one Registry never download the same package twice and never
// get the same allocated port.
//
// Most programs use DefaultRegistry. Tests that need isolation create their
// own with NewRegistry and pass it with WithRegistry.
type Registry struct {
	cache *bincache.Registry
	ports *netutil.PortRegistry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	log := core.Logger()
	return &Registry{
		cache: bincache.NewRegistry(log.With("subsystem", "bincache")),
		ports: netutil.NewPortRegistry(log.With("subsystem", "ports")),
	}
}

// DefaultRegistry returns the process-wide Registry used by Servers created
// without WithRegistry. It is created on first use.
func DefaultRegistry() *Registry {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	singletonOnce.Do(func() {
		singletonReg = NewRegistry()
	})
	return singletonReg
}

// resetForTesting resets the singleton state so that the next call to
// DefaultRegistry creates a fresh registry. It must only be called from
// tests.
func resetForTesting() {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	singletonReg = nil
	singletonOnce = sync.Once{}
}

// AcquisitionStatus returns the download status of cacheDir in r.
func (r *Registry) AcquisitionStatus(cacheDir string) AcquisitionStatus {
	return r.cache.Status(cacheDir)
}

// Purge removes cacheDir and forgets its download status. It waits for an
// acquisition of the same directory in another process to finish first.
// Removing a directory that does not exist is not an error.
func (r *Registry) Purge(ctx context.Context, cacheDir string) error {
	return r.cache.Purge(ctx, cacheDir)
}

// Purge removes cacheDir using DefaultRegistry.
func Purge(ctx context.Context, cacheDir string) error {
	return DefaultRegistry().Purge(ctx, cacheDir)
}

// DefaultCacheDir returns the cache directory Servers use for p when
// WithCacheDir is not given. It returns ErrNoSystemCacheDirectory when the
// operating system has no user cache directory.
func DefaultCacheDir(p Platform) (string, error) {
	return core.DefaultCacheDir(p)
}

// serverWrapper wraps core.Controller to implement the Server interface.
//
// The core.Controller is stored as a named (unexported) field rather than
// embedded to prevent callers from using type assertions to access methods
// that are not part of the public Server interface.
type serverWrapper struct {
	ctrl *core.Controller
}

// Setup wraps core.Controller.Setup.
func (w *serverWrapper) Setup(ctx context.Context) error {
	return w.ctrl.Setup(ctx)
}

// Start wraps core.Controller.Start.
func (w *serverWrapper) Start(ctx context.Context) error {
	return w.ctrl.Start(ctx)
}

// Stop wraps core.Controller.Stop.
func (w *serverWrapper) Stop(ctx context.Context) error {
	return w.ctrl.Stop(ctx)
}

// Dispose wraps core.Controller.Dispose.
func (w *serverWrapper) Dispose() {
	w.ctrl.Dispose()
}

func (w *serverWrapper) Status() Status {
	return w.ctrl.Status()
}

func (w *serverWrapper) AcquisitionStatus() AcquisitionStatus {
	return w.ctrl.AcquisitionStatus()
}

func (w *serverWrapper) Port() int {
	return w.ctrl.Port()
}

func (w *serverWrapper) CacheDir() string {
	return w.ctrl.Paths().CacheDir
}

func (w *serverWrapper) DatabaseDir() string {
	return w.ctrl.Paths().DatabaseDir
}

func (w *serverWrapper) FullConnectionURI(database string) string {
	return w.ctrl.FullConnectionURI(database)
}

func (w *serverWrapper) WaitReady(ctx context.Context, timeout time.Duration) error {
	return w.ctrl.WaitReady(ctx, timeout)
}

func (w *serverWrapper) DatabaseExists(ctx context.Context, name string) (bool, error) {
	return w.ctrl.DatabaseExists(ctx, name)
}

func (w *serverWrapper) CreateDatabase(ctx context.Context, name string) error {
	return w.ctrl.CreateDatabase(ctx, name)
}

func (w *serverWrapper) DropDatabase(ctx context.Context, name string) error {
	return w.ctrl.DropDatabase(ctx, name)
}

func (w *serverWrapper) Migrate(ctx context.Context, database string) error {
	return w.ctrl.Migrate(ctx, database)
}

// defaultServerConfig returns a serverConfig populated with all default
// values. Both New and test helpers use this to avoid duplicating the
// default field assignments.
func defaultServerConfig() serverConfig {
	return serverConfig{Config: core.Config{
		Port:       DefaultPort,
		User:       DefaultUser,
		Password:   DefaultPassword,
		AuthMethod: DefaultAuthMethod,
		Timeout:    DefaultTimeout,
	}}
}

// resolve fills the fields that depend on more than one option: the
// platform and version, the fetcher and the shared registries.
func (c *serverConfig) resolve() error {
	switch {
	case c.Platform == (Platform{}):
		v := c.version
		if v == "" {
			v = DefaultVersion
		}
		p, err := fetch.HostPlatform(v)
		if err != nil {
			return fmt.Errorf("detect platform: %w", err)
		}
		c.Platform = p
	case c.version != "":
		c.Platform.Version = c.version
	}

	if c.Fetcher == nil {
		c.Fetcher = &fetch.MavenFetcher{}
	}

	reg := c.registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	c.Registry = reg.cache
	c.Ports = reg.ports
	return nil
}

// New creates a Server. It validates the configuration, allocates or
// reserves the port and creates the cache and database directories; it
// neither downloads binaries nor runs any postgresql tool. Call Setup next.
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints. A missing WithDatabaseDir is reported as an
// error.
//
//nolint:ireturn // Returns Server interface by design for testability (mockable).
func New(opts ...Option) (Server, error) {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	ctrl, err := core.NewController(cfg.toCoreConfig())
	if err != nil {
		return nil, err
	}
	return &serverWrapper{ctrl: ctrl}, nil
}
