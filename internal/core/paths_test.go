package core

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/giantswarm/pgenv/internal/fetch"
	"github.com/giantswarm/pgenv/internal/pgerr"
)

func TestDerivePaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	tests := map[string]struct {
		platform fetch.Platform
		want     Paths
	}{
		"linux": {
			platform: fetch.Platform{OS: fetch.OSLinux, Arch: fetch.ArchAmd64, Version: fetch.V16},
			want: Paths{
				CacheDir:      filepath.Join(root, "cache"),
				DatabaseDir:   filepath.Join(root, "db"),
				PgCtl:         filepath.Join(root, "cache", "bin", "pg_ctl"),
				InitDB:        filepath.Join(root, "cache", "bin", "initdb"),
				PasswordFile:  filepath.Join(root, "db") + ".pwfile",
				LogFile:       filepath.Join(root, "db") + ".log",
				Archive:       filepath.Join(root, "cache", "linux-amd64-16.2.0.zip"),
				VersionMarker: filepath.Join(root, "db", "PG_VERSION"),
			},
		},
		"windows executables": {
			platform: fetch.Platform{OS: fetch.OSWindows, Arch: fetch.ArchAmd64, Version: fetch.V15},
			want: Paths{
				CacheDir:      filepath.Join(root, "cache"),
				DatabaseDir:   filepath.Join(root, "db"),
				PgCtl:         filepath.Join(root, "cache", "bin", "pg_ctl.exe"),
				InitDB:        filepath.Join(root, "cache", "bin", "initdb.exe"),
				PasswordFile:  filepath.Join(root, "db") + ".pwfile",
				LogFile:       filepath.Join(root, "db") + ".log",
				Archive:       filepath.Join(root, "cache", "windows-amd64-15.6.0.zip"),
				VersionMarker: filepath.Join(root, "db", "PG_VERSION"),
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := derivePaths(Config{
				DatabaseDir: filepath.Join(root, "db") + string(filepath.Separator),
				CacheDir:    filepath.Join(root, "cache"),
				Platform:    tc.platform,
			})
			if err != nil {
				t.Fatalf("derivePaths() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("derivePaths() =\n%+v\nwant\n%+v", got, tc.want)
			}
		})
	}
}

// The tests below swap userCacheDir and therefore must not run in parallel.

func TestDefaultCacheDir(t *testing.T) {
	root := t.TempDir()
	orig := userCacheDir
	userCacheDir = func() (string, error) { return root, nil }
	t.Cleanup(func() { userCacheDir = orig })

	p := fetch.Platform{OS: fetch.OSLinux, Arch: fetch.ArchArm64v8, Version: fetch.V14}
	got, err := DefaultCacheDir(p)
	if err != nil {
		t.Fatalf("DefaultCacheDir() error = %v", err)
	}
	if want := filepath.Join(root, "pgenv", "linux", "arm64v8", "14.11.0"); got != want {
		t.Errorf("DefaultCacheDir() = %q, want %q", got, want)
	}
}

func TestDefaultCacheDir_NoUserCache(t *testing.T) {
	orig := userCacheDir
	userCacheDir = func() (string, error) { return "", errors.New("$HOME is not defined") }
	t.Cleanup(func() { userCacheDir = orig })

	_, err := derivePaths(Config{
		DatabaseDir: t.TempDir(),
		Platform:    fetch.Platform{OS: fetch.OSLinux, Arch: fetch.ArchAmd64, Version: fetch.V16},
	})
	if !errors.Is(err, pgerr.ErrNoSystemCacheDirectory) {
		t.Fatalf("derivePaths() error = %v, want ErrNoSystemCacheDirectory", err)
	}
}
