package pgenv

import (
	"github.com/giantswarm/pgenv/internal/bincache"
	"github.com/giantswarm/pgenv/internal/core"
)

// Status is the lifecycle state of a Server.
//
// Status is a type alias so that the String method of [core.Status] is part
// of the public API.
type Status = core.Status

const (
	// StatusUninitialized is the state of a Server returned by New.
	StatusUninitialized = core.StatusUninitialized

	// StatusInitializing is reported while initdb runs.
	StatusInitializing = core.StatusInitializing

	// StatusInitialized is reported once the data directory holds a cluster.
	StatusInitialized = core.StatusInitialized

	// StatusStarting is reported while pg_ctl start runs.
	StatusStarting = core.StatusStarting

	// StatusStarted is reported once pg_ctl start returned successfully.
	StatusStarted = core.StatusStarted

	// StatusStopping is reported while pg_ctl stop runs.
	StatusStopping = core.StatusStopping

	// StatusStopped is reported once pg_ctl stop returned successfully. A
	// stopped Server may be started again.
	StatusStopped = core.StatusStopped

	// StatusFailure is terminal: a command failed and every later lifecycle
	// call returns an error wrapping ErrServerFailed.
	StatusFailure = core.StatusFailure
)

// StatusListener is called synchronously on every Status transition. It must
// not call lifecycle methods of the same Server.
type StatusListener = core.StatusListener

// AcquisitionStatus is the state of the binaries download for one cache
// directory.
type AcquisitionStatus = bincache.Status

const (
	// AcquisitionUndefined means this process never acquired the location.
	// Binaries that were already on disk leave it undefined.
	AcquisitionUndefined = bincache.StatusUndefined

	// AcquisitionInProgress is reported while binaries are downloaded and
	// unpacked. A failed acquisition stays in this state until retried.
	AcquisitionInProgress = bincache.StatusInProgress

	// AcquisitionFinished means the binaries were acquired by this process.
	AcquisitionFinished = bincache.StatusFinished
)

// AuthMethod selects the authentication method initdb configures for the
// superuser.
//
// AuthMethod is a type alias so that IsValid and String of
// [core.AuthMethod] are part of the public API.
type AuthMethod = core.AuthMethod

const (
	// AuthPlain is the "password" method. This is the default.
	AuthPlain = core.AuthPlain

	// AuthMD5 is the "md5" method.
	AuthMD5 = core.AuthMD5

	// AuthScramSHA256 is the "scram-sha-256" method.
	AuthScramSHA256 = core.AuthScramSHA256
)
