package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/giantswarm/pgenv/internal/bincache"
	"github.com/giantswarm/pgenv/internal/fetch"
	"github.com/giantswarm/pgenv/internal/netutil"
)

// AuthMethod selects how the server authenticates the configured user.
type AuthMethod int

const (
	// AuthPlain sends the password in clear text ("password").
	AuthPlain AuthMethod = iota
	// AuthMD5 uses MD5 password hashing ("md5").
	AuthMD5
	// AuthScramSHA256 uses SCRAM-SHA-256 ("scram-sha-256"). Requires
	// postgresql 10 or later.
	AuthScramSHA256
)

// IsValid reports whether a is a recognized AuthMethod value.
func (a AuthMethod) IsValid() bool {
	switch a {
	case AuthPlain, AuthMD5, AuthScramSHA256:
		return true
	default:
		return false
	}
}

// String returns the method name initdb expects for -A.
func (a AuthMethod) String() string {
	switch a {
	case AuthPlain:
		return "password"
	case AuthMD5:
		return "md5"
	case AuthScramSHA256:
		return "scram-sha-256"
	default:
		return fmt.Sprintf("AuthMethod(%d)", int(a))
	}
}

// StatusListener observes controller transitions. It runs synchronously on
// the goroutine performing the transition and must not call lifecycle
// methods of the same controller.
type StatusListener func(from, to Status)

// Config holds the configuration of one Controller.
// All fields are immutable after NewController.
type Config struct {
	// DatabaseDir is the postgresql data directory. Required.
	DatabaseDir string
	// CacheDir holds the unpacked binaries. Empty selects the default
	// location below the user cache directory for Platform.
	CacheDir string
	// Port the server listens on. Zero allocates a free port.
	Port int
	// User is the superuser created by initdb.
	User string
	// Password of User, handed to initdb through a password file.
	Password string
	// AuthMethod is passed to initdb -A.
	AuthMethod AuthMethod
	// Persistent keeps the data directory and password file on Dispose.
	Persistent bool
	// Timeout bounds each initdb and pg_ctl invocation. Zero is unbounded.
	Timeout time.Duration
	// MigrationDir holds *.sql files applied by Migrate. Empty disables
	// migrations.
	MigrationDir string

	Platform       fetch.Platform
	Fetcher        fetch.Fetcher
	Registry       *bincache.Registry
	Ports          *netutil.PortRegistry
	StatusListener StatusListener // optional
}

// Validate checks all Config invariants and returns an error describing every
// violation found, joined with errors.Join.
func (c Config) Validate() error {
	var errs []error

	if c.DatabaseDir == "" {
		errs = append(errs, errors.New("database directory must not be empty"))
	}
	if c.User == "" {
		errs = append(errs, errors.New("user must not be empty"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 0 and 65535, got %d", c.Port))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("invalid auth method: %v", c.AuthMethod))
	}
	if err := c.Platform.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Fetcher == nil {
		errs = append(errs, errors.New("fetcher must not be nil"))
	}
	if c.Registry == nil {
		errs = append(errs, errors.New("registry must not be nil"))
	}
	if c.Ports == nil {
		errs = append(errs, errors.New("port registry must not be nil"))
	}

	return errors.Join(errs...)
}
