package core

import (
	"log/slog"
	"sync/atomic"
)

// Two slots back Logger: custom holds what SetLogger installed and derived
// caches slog.Default() tagged with component=pgenv. Both are swapped
// atomically so servers may log while the logger is replaced.
var (
	custom  atomic.Pointer[slog.Logger]
	derived atomic.Pointer[slog.Logger]
)

// Logger returns the logger pgenv writes to. It is safe for concurrent use.
//
// Without SetLogger the result is derived from slog.Default() on first use
// and reused afterwards; a later slog.SetDefault is seen only after
// SetLogger(nil).
func Logger() *slog.Logger {
	if l := custom.Load(); l != nil {
		return l
	}
	for {
		if l := derived.Load(); l != nil {
			return l
		}
		l := slog.Default().With("component", "pgenv")
		if derived.CompareAndSwap(nil, l) {
			return l
		}
	}
}

// SetLogger installs l for every server constructed afterwards. A nil l
// goes back to the slog.Default() based logger.
func SetLogger(l *slog.Logger) {
	custom.Store(l)
	derived.Store(nil)
}
