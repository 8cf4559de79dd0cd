package pgenv

import (
	"log/slog"

	"github.com/giantswarm/pgenv/internal/core"
)

// SetLogger replaces the package-level logger used by pgenv.
// This allows applications to integrate pgenv logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; pgenv will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute. Call SetLogger(nil) after slog.SetDefault() to pick
// up changes.
//
// Servers and Registries capture the logger when they are created, so call
// SetLogger before New (e.g., in TestMain before m.Run).
//
// Example:
//
//	pgenv.SetLogger(myLogger.With("component", "pgenv"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
