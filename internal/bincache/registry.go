package bincache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/giantswarm/pgenv/internal/archive"
	"github.com/giantswarm/pgenv/internal/fileutil"
	"github.com/giantswarm/pgenv/internal/pgerr"
	"github.com/giantswarm/pgenv/internal/sentinel"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidLocation is returned when a Location is missing a path.
const ErrInvalidLocation = sentinel.Error("invalid cache location")

// Status is the acquisition state of one cache location.
type Status int

// Acquisition states.
const (
	StatusUndefined Status = iota
	StatusInProgress
	StatusFinished
)

// String returns a lower-case name for s.
func (s Status) String() string {
	switch s {
	case StatusUndefined:
		return "undefined"
	case StatusInProgress:
		return "in_progress"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Location identifies a cache directory and the files acquisition touches.
type Location struct {
	CacheDir    string // directory the binaries are unpacked into
	ArchivePath string // where the downloaded package is stored until unpacked
	MarkerPath  string // file whose presence means the binaries are in place
}

func (l Location) validate() error {
	var errs []error
	if l.CacheDir == "" {
		errs = append(errs, errors.New("cache dir must not be empty"))
	}
	if l.ArchivePath == "" {
		errs = append(errs, errors.New("archive path must not be empty"))
	}
	if l.MarkerPath == "" {
		errs = append(errs, errors.New("marker path must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidLocation, errors.Join(errs...))
	}
	return nil
}

// FetchFunc returns the bytes of a binaries package.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Registry records acquisition status and live users per cache location.
// The zero value is not usable; construct with NewRegistry.
type Registry struct {
	mu      sync.Mutex
	status  map[string]Status
	refs    map[string]int
	flights map[string]*flight
	nextID  uint64

	group  singleflight.Group
	logger *slog.Logger
}

// flight is one shared acquisition run of a cache location. Its context
// outlives the caller that started it and is canceled once every waiter has
// given up.
type flight struct {
	key     string
	ctx     context.Context //nolint:containedctx // owned by the shared run
	cancel  context.CancelFunc
	waiters int
}

// NewRegistry returns an empty Registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		status:  make(map[string]Status),
		refs:    make(map[string]int),
		flights: make(map[string]*flight),
		logger:  logger,
	}
}

// Status returns the recorded status of cacheDir, StatusUndefined when the
// registry has never acquired it.
func (r *Registry) Status(cacheDir string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status[cacheDir]
}

func (r *Registry) setStatus(cacheDir string, s Status) {
	r.mu.Lock()
	r.status[cacheDir] = s
	r.mu.Unlock()
}

// Retain records one more live user of cacheDir.
func (r *Registry) Retain(cacheDir string) {
	r.mu.Lock()
	r.refs[cacheDir]++
	r.mu.Unlock()
}

// Release drops one user of cacheDir and returns how many remain.
func (r *Registry) Release(cacheDir string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.refs[cacheDir] - 1
	if n <= 0 {
		delete(r.refs, cacheDir)
		return 0
	}
	r.refs[cacheDir] = n
	return n
}

// EnsureAcquired returns once the binaries for loc are on disk, fetching and
// unpacking them if the marker file is missing.
//
// Concurrent callers for the same location share one acquisition run. A
// caller whose ctx is done stops waiting without disturbing the others; the
// run itself is canceled when no caller is left waiting for it.
func (r *Registry) EnsureAcquired(ctx context.Context, loc Location, fetch FetchFunc) error {
	if err := loc.validate(); err != nil {
		return err
	}

	present, err := r.markerPresent(loc)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	f := r.join(ctx, loc.CacheDir)
	defer r.leave(loc.CacheDir, f)

	ch := r.group.DoChan(f.key, func() (any, error) {
		return nil, r.acquire(f.ctx, loc, fetch)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return pgerr.WithPath(pgerr.ErrDownloadFailure, loc.CacheDir, ctx.Err())
	}
}

// join registers a waiter on the current flight for cacheDir, starting a new
// flight when none is open. The flight keeps ctx's values but not its
// cancellation.
func (r *Registry) join(ctx context.Context, cacheDir string) *flight {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flights[cacheDir]
	if !ok {
		r.nextID++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{key: fmt.Sprintf("%s#%d", cacheDir, r.nextID), ctx: fctx, cancel: cancel}
		r.flights[cacheDir] = f
	}
	f.waiters++
	return f
}

// leave drops a waiter from f. The last one out cancels the run and closes
// the flight, so a later caller starts a fresh run instead of joining one
// that is shutting down.
func (r *Registry) leave(cacheDir string, f *flight) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if r.flights[cacheDir] == f {
		delete(r.flights, cacheDir)
	}
}

// markerPresent stats the marker under the registry lock.
func (r *Registry) markerPresent(loc Location) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := fileutil.Exists(loc.MarkerPath)
	if err != nil {
		return false, pgerr.WithPath(pgerr.ErrReadFile, loc.MarkerPath, err)
	}
	return ok, nil
}

// acquire runs one acquisition of loc while holding its file lock.
func (r *Registry) acquire(ctx context.Context, loc Location, fetch FetchFunc) error {
	// The lock file and cache dir are the first things touched on disk.
	r.setStatus(loc.CacheDir, StatusInProgress)

	if err := fileutil.EnsureDir(loc.CacheDir); err != nil {
		return err
	}

	path := lockPath(loc.CacheDir)
	r.logger.Debug("acquiring cache lock", "lock_path", path)
	lock, err := acquireFileLock(ctx, path)
	if err != nil {
		return pgerr.WithPath(pgerr.ErrDownloadFailure, path, err)
	}
	defer releaseFileLock(r.logger, lock)

	// Another process may have finished while we waited for the lock.
	present, err := r.markerPresent(loc)
	if err != nil {
		return err
	}
	if present {
		r.logger.Info("using postgresql binaries (unpacked while waiting)", "cache_dir", loc.CacheDir)
		r.setStatus(loc.CacheDir, StatusFinished)
		return nil
	}

	r.logger.Info("acquiring postgresql binaries", "cache_dir", loc.CacheDir)

	data, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, pgerr.ErrDownloadFailure) {
			return err
		}
		return pgerr.New(pgerr.ErrDownloadFailure, err)
	}

	if _, err := fileutil.WriteFile(loc.ArchivePath, bytes.NewReader(data), &fileutil.WriteOptions{Atomic: true}); err != nil {
		return err
	}
	if err := archive.Unpack(loc.ArchivePath, loc.CacheDir); err != nil {
		return err
	}
	if err := fileutil.Remove(loc.ArchivePath); err != nil {
		return err
	}

	present, err = r.markerPresent(loc)
	if err != nil {
		return err
	}
	if !present {
		return pgerr.WithPath(pgerr.ErrInvalidPackage, loc.MarkerPath, errors.New("missing after unpack"))
	}

	r.setStatus(loc.CacheDir, StatusFinished)
	r.logger.Info("postgresql binaries ready", "cache_dir", loc.CacheDir, "bytes", len(data))
	return nil
}

// Purge removes cacheDir from disk and forgets its status. It takes the
// location's file lock so an acquisition in another process is not cut short.
func (r *Registry) Purge(ctx context.Context, cacheDir string) error {
	if cacheDir == "" {
		return fmt.Errorf("%w: cache dir must not be empty", ErrInvalidLocation)
	}

	exists, err := fileutil.Exists(cacheDir)
	if err != nil {
		return pgerr.WithPath(pgerr.ErrCleanupFailure, cacheDir, err)
	}
	if !exists {
		r.mu.Lock()
		delete(r.status, cacheDir)
		r.mu.Unlock()
		return nil
	}

	path := lockPath(cacheDir)
	lock, err := acquireFileLock(ctx, path)
	if err != nil {
		return pgerr.WithPath(pgerr.ErrCleanupFailure, path, err)
	}
	defer releaseFileLock(r.logger, lock)

	if err := fileutil.RemoveAll(cacheDir); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.status, cacheDir)
	r.mu.Unlock()

	r.logger.Info("purged postgresql binaries", "cache_dir", cacheDir)
	return nil
}
