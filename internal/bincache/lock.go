package bincache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

const lockPollInterval = 50 * time.Millisecond

// lockPath is the lock file for cacheDir. It sits next to the directory so
// Purge can remove the directory while holding the lock.
func lockPath(cacheDir string) string {
	return cacheDir + ".lock"
}

// acquireFileLock blocks until it holds an exclusive lock on path or ctx ends.
func acquireFileLock(ctx context.Context, path string) (*flock.Flock, error) {
	fl := flock.New(path)

	ok, err := fl.TryLockContext(ctx, lockPollInterval)
	switch {
	case err != nil:
		return nil, fmt.Errorf("lock %s: %w", path, err)
	case !ok && ctx.Err() != nil:
		return nil, fmt.Errorf("lock %s: %w", path, ctx.Err())
	case !ok:
		return nil, fmt.Errorf("lock %s: not acquired", path)
	}
	return fl, nil
}

// releaseFileLock unlocks fl. The lock file itself is left in place, since
// another process may already be waiting on it.
func releaseFileLock(logger *slog.Logger, fl *flock.Flock) {
	if fl == nil {
		return
	}
	if err := fl.Close(); err != nil {
		logger.Debug("release cache lock", "path", fl.Path(), "error", err)
	}
}
