package pgenv

import "time"

// Default configuration values for New.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them.
const (
	// DefaultUser is the superuser initdb creates.
	DefaultUser = "postgres"

	// DefaultPassword is the password of DefaultUser.
	DefaultPassword = "password"

	// DefaultAuthMethod is the authentication method initdb configures.
	DefaultAuthMethod = AuthPlain

	// DefaultVersion is the postgresql version downloaded when neither
	// WithVersion nor WithPlatform is given.
	DefaultVersion = V16

	// DefaultPort selects a free port allocated when the Server is created.
	DefaultPort = 0

	// DefaultTimeout bounds each initdb and pg_ctl invocation. Use
	// WithTimeout(0) for no bound.
	DefaultTimeout = 15 * time.Second

	// DefaultReadyTimeout is a reasonable bound for Server.WaitReady after
	// Start on a developer machine.
	DefaultReadyTimeout = 30 * time.Second
)
