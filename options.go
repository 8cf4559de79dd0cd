package pgenv

import (
	"fmt"
	"time"
)

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("pgenv: %s must not be empty", name))
	}
}

// requireNonNil panics if v is nil with a descriptive message.
func requireNonNil(name string, isNil bool) {
	if isNil {
		panic(fmt.Sprintf("pgenv: %s must not be nil", name))
	}
}

// Option configures a Server during construction via New.
// Each With* function returns an Option that sets a specific field.
//
// With* functions panic on invalid input (empty paths, out of range ports,
// negative durations). Option values are typically constants or test
// fixtures, so an invalid value is a programmer error rather than a runtime
// condition. The pattern mirrors [regexp.MustCompile].
type Option func(*serverConfig)

// WithDatabaseDir sets the postgresql data directory. Required.
// Panics if dir is empty.
func WithDatabaseDir(dir string) Option {
	requireNonEmpty("database directory", dir)
	return func(c *serverConfig) {
		c.DatabaseDir = dir
	}
}

// WithCacheDir sets the directory the binaries are unpacked into.
//
// Default: <user cache dir>/pgenv/<os>/<arch>/<version>.
//
// An explicitly configured cache directory is never purged by Dispose.
// Panics if dir is empty.
func WithCacheDir(dir string) Option {
	requireNonEmpty("cache directory", dir)
	return func(c *serverConfig) {
		c.CacheDir = dir
	}
}

// WithPort sets the port the server listens on. Zero allocates a free port
// when the Server is created.
//
// Default: 0.
//
// Panics if port is outside 0-65535.
func WithPort(port int) Option {
	if port < 0 || port > 65535 {
		panic(fmt.Sprintf("pgenv: port must be between 0 and 65535, got %d", port))
	}
	return func(c *serverConfig) {
		c.Port = port
	}
}

// WithUser sets the superuser initdb creates.
//
// Default: "postgres".
//
// Panics if user is empty.
func WithUser(user string) Option {
	requireNonEmpty("user", user)
	return func(c *serverConfig) {
		c.User = user
	}
}

// WithPassword sets the superuser password.
//
// Default: "password".
//
// Panics if password is empty.
func WithPassword(password string) Option {
	requireNonEmpty("password", password)
	return func(c *serverConfig) {
		c.Password = password
	}
}

// WithAuthMethod sets the authentication method initdb configures.
//
// Default: AuthPlain.
//
// Panics if m is not a recognized AuthMethod.
func WithAuthMethod(m AuthMethod) Option {
	if !m.IsValid() {
		panic(fmt.Sprintf("pgenv: invalid auth method: %v", m))
	}
	return func(c *serverConfig) {
		c.AuthMethod = m
	}
}

// WithPersistent keeps the database directory, password file and server log
// when the Server is disposed, and never purges the binaries cache.
//
// Default: false.
func WithPersistent(persistent bool) Option {
	return func(c *serverConfig) {
		c.Persistent = persistent
	}
}

// WithTimeout bounds each initdb and pg_ctl invocation. A process still
// running when d expires is killed together with its children and the call
// returns an error wrapping ErrTimeout. Zero disables the bound.
//
// Default: 15 seconds.
//
// Panics if d < 0.
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		panic(fmt.Sprintf("pgenv: timeout must not be negative, got %v", d))
	}
	return func(c *serverConfig) {
		c.Timeout = d
	}
}

// WithMigrationDir sets the directory of *.sql files applied by
// Server.Migrate.
// Panics if dir is empty.
func WithMigrationDir(dir string) Option {
	requireNonEmpty("migration directory", dir)
	return func(c *serverConfig) {
		c.MigrationDir = dir
	}
}

// WithVersion selects the postgresql version. It overrides the version of a
// platform given with WithPlatform.
//
// Default: V16.
//
// Panics if v is empty.
func WithVersion(v Version) Option {
	requireNonEmpty("version", string(v))
	return func(c *serverConfig) {
		c.version = v
	}
}

// WithPlatform selects the binaries package explicitly instead of detecting
// the host platform. Useful to prefetch packages for another host.
//
// Panics if p has an empty component.
func WithPlatform(p Platform) Option {
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("pgenv: invalid platform: %v", err))
	}
	return func(c *serverConfig) {
		c.Platform = p
	}
}

// WithFetcher replaces the Maven download of the binaries package.
//
// Default: &MavenFetcher{}.
//
// Panics if f is nil.
func WithFetcher(f Fetcher) Option {
	requireNonNil("fetcher", f == nil)
	return func(c *serverConfig) {
		c.Fetcher = f
	}
}

// WithRegistry makes the Server share download state and port reservations
// with the other Servers of r instead of DefaultRegistry.
//
// Panics if r is nil.
func WithRegistry(r *Registry) Option {
	requireNonNil("registry", r == nil)
	return func(c *serverConfig) {
		c.registry = r
	}
}

// WithStatusListener registers fn to observe every Status transition.
// Panics if fn is nil.
func WithStatusListener(fn StatusListener) Option {
	requireNonNil("status listener", fn == nil)
	return func(c *serverConfig) {
		c.StatusListener = fn
	}
}
