// Package bincache makes sure the postgresql binaries for a cache location
// are present on disk, downloading and unpacking them at most once.
//
// A Registry tracks one Status per cache directory. Acquisition of a location
// is exclusive for its whole duration: callers inside one process share a
// single in-flight acquisition (singleflight), and processes sharing the same
// cache directory serialize on an advisory file lock next to it. The marker
// file is re-checked after the lock is taken, so a location populated by
// another process is never fetched twice.
//
// A failed acquisition leaves the location's status at StatusInProgress. The
// next call retries from the beginning.
package bincache
