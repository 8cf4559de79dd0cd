package core

import (
	"os"
	"path/filepath"

	"github.com/giantswarm/pgenv/internal/fetch"
	"github.com/giantswarm/pgenv/internal/pgerr"
)

// VersionMarkerName is the file initdb writes into a data directory; its
// presence means the directory is initialized.
const VersionMarkerName = "PG_VERSION"

// Paths is the file layout of one instance, derived once at construction.
type Paths struct {
	CacheDir      string // unpacked binaries
	DatabaseDir   string // postgresql data directory
	PgCtl         string // <cache>/bin/pg_ctl
	InitDB        string // <cache>/bin/initdb
	PasswordFile  string // <database dir>.pwfile
	LogFile       string // <database dir>.log, server output
	Archive       string // <cache>/<platform>-<version>.zip while downloading
	VersionMarker string // <database dir>/PG_VERSION
}

// userCacheDir is swapped in tests.
var userCacheDir = os.UserCacheDir

// DefaultCacheDir returns the cache location used for p when none is
// configured: <user cache dir>/pgenv/<os>/<arch>/<version>.
func DefaultCacheDir(p fetch.Platform) (string, error) {
	root, err := userCacheDir()
	if err != nil || root == "" {
		return "", pgerr.New(pgerr.ErrNoSystemCacheDirectory, err)
	}
	return filepath.Join(root, p.CacheSubdir()), nil
}

// derivePaths computes the layout for cfg. Relative directories are made
// absolute so the paths stay valid whatever the working directory of the
// postgresql tools.
func derivePaths(cfg Config) (Paths, error) {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		dir, err := DefaultCacheDir(cfg.Platform)
		if err != nil {
			return Paths{}, err
		}
		cacheDir = dir
	}

	cacheDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return Paths{}, pgerr.WithPath(pgerr.ErrDirCreation, cfg.CacheDir, err)
	}
	dbDir, err := filepath.Abs(cfg.DatabaseDir)
	if err != nil {
		return Paths{}, pgerr.WithPath(pgerr.ErrDirCreation, cfg.DatabaseDir, err)
	}

	bin := filepath.Join(cacheDir, "bin")
	return Paths{
		CacheDir:      cacheDir,
		DatabaseDir:   dbDir,
		PgCtl:         filepath.Join(bin, cfg.Platform.Executable("pg_ctl")),
		InitDB:        filepath.Join(bin, cfg.Platform.Executable("initdb")),
		PasswordFile:  dbDir + ".pwfile",
		LogFile:       dbDir + ".log",
		Archive:       filepath.Join(cacheDir, cfg.Platform.ArchiveName()),
		VersionMarker: filepath.Join(dbDir, VersionMarkerName),
	}, nil
}
