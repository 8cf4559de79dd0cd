package pgenv

import "time"

// ResetForTesting resets the DefaultRegistry singleton so that the next call
// creates a fresh registry. This is exported only for use in test packages
// (package pgenv_test).
func ResetForTesting() { resetForTesting() }

// ConfigSnapshot holds a copy of serverConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	DatabaseDir  string
	CacheDir     string
	Port         int
	User         string
	Password     string
	AuthMethod   AuthMethod
	Persistent   bool
	Timeout      time.Duration
	MigrationDir string
	Version      Version
	Platform     Platform
	Fetcher      Fetcher
	Registry     *Registry
	HasListener  bool
}

// ApplyOptionsForTesting creates a default serverConfig, applies the given
// options, and returns a ConfigSnapshot of the result. Nothing is resolved,
// so Platform stays zero unless WithPlatform was given.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		DatabaseDir:  cfg.DatabaseDir,
		CacheDir:     cfg.CacheDir,
		Port:         cfg.Port,
		User:         cfg.User,
		Password:     cfg.Password,
		AuthMethod:   cfg.AuthMethod,
		Persistent:   cfg.Persistent,
		Timeout:      cfg.Timeout,
		MigrationDir: cfg.MigrationDir,
		Version:      cfg.version,
		Platform:     cfg.Platform,
		Fetcher:      cfg.Fetcher,
		Registry:     cfg.registry,
		HasListener:  cfg.StatusListener != nil,
	}
}

// ResolvedPlatformForTesting applies opts, resolves the config and returns
// the platform New would use.
func ResolvedPlatformForTesting(opts ...Option) (Platform, error) {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.resolve(); err != nil {
		return Platform{}, err
	}
	return cfg.Platform, nil
}
