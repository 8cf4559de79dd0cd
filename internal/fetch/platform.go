package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/giantswarm/pgenv/internal/sentinel"
)

// ErrUnsupportedPlatform is returned when the host OS or architecture has no
// published postgresql binaries.
const ErrUnsupportedPlatform = sentinel.Error("unsupported platform")

// OS is an operating system with published binaries.
type OS string

// Supported operating systems.
const (
	OSDarwin  OS = "darwin"
	OSWindows OS = "windows"
	OSLinux   OS = "linux"
	// OSAlpine is Linux with musl libc. It shares the "linux" directory
	// name and adds an "-alpine" artifact suffix.
	OSAlpine OS = "alpine"
)

// dirName is the OS component used in artifact and cache names.
func (o OS) dirName() string {
	if o == OSAlpine {
		return string(OSLinux)
	}
	return string(o)
}

// Arch is a CPU architecture with published binaries.
type Arch string

// Supported architectures.
const (
	ArchAmd64   Arch = "amd64"
	ArchI386    Arch = "i386"
	ArchArm32v6 Arch = "arm32v6"
	ArchArm32v7 Arch = "arm32v7"
	ArchArm64v8 Arch = "arm64v8"
	ArchPpc64le Arch = "ppc64le"
)

// Version is a published binaries version (postgresql version plus the
// packaging revision).
type Version string

// Well-known versions.
const (
	V16 Version = "16.2.0"
	V15 Version = "15.6.0"
	V14 Version = "14.11.0"
	V13 Version = "13.14.0"
	V12 Version = "12.18.0"
)

// Platform selects one binaries package.
type Platform struct {
	OS      OS
	Arch    Arch
	Version Version
}

// String returns the artifact classifier, e.g. "linux-amd64" or
// "linux-amd64-alpine".
func (p Platform) String() string {
	s := p.OS.dirName() + "-" + string(p.Arch)
	if p.OS == OSAlpine {
		s += "-alpine"
	}
	return s
}

// CacheSubdir returns the per-platform directory below a user cache root:
// pgenv/<os>/<arch>/<version>.
func (p Platform) CacheSubdir() string {
	return filepath.Join("pgenv", p.OS.dirName(), string(p.Arch), string(p.Version))
}

// ArchiveName returns the file name the downloaded package is stored under
// inside the cache directory.
func (p Platform) ArchiveName() string {
	return fmt.Sprintf("%s-%s.zip", p, p.Version)
}

// Executable returns the file name of a postgresql executable on p.
func (p Platform) Executable(name string) string {
	if p.OS == OSWindows {
		return name + ".exe"
	}
	return name
}

// Validate reports whether every component of p is set.
func (p Platform) Validate() error {
	switch {
	case p.OS == "":
		return fmt.Errorf("%w: empty operating system", ErrUnsupportedPlatform)
	case p.Arch == "":
		return fmt.Errorf("%w: empty architecture", ErrUnsupportedPlatform)
	case p.Version == "":
		return fmt.Errorf("%w: empty version", ErrUnsupportedPlatform)
	}
	return nil
}

// alpineRelease exists on Alpine Linux hosts.
const alpineRelease = "/etc/alpine-release"

// HostPlatform returns the platform of the running process for version v.
func HostPlatform(v Version) (Platform, error) {
	osName, err := hostOS()
	if err != nil {
		return Platform{}, err
	}
	arch, err := archFor(runtime.GOARCH)
	if err != nil {
		return Platform{}, err
	}
	return Platform{OS: osName, Arch: arch, Version: v}, nil
}

func hostOS() (OS, error) {
	switch runtime.GOOS {
	case "linux":
		if _, err := os.Stat(alpineRelease); err == nil {
			return OSAlpine, nil
		}
		return OSLinux, nil
	case "darwin":
		return OSDarwin, nil
	case "windows":
		return OSWindows, nil
	default:
		return "", fmt.Errorf("%w: GOOS %s", ErrUnsupportedPlatform, runtime.GOOS)
	}
}

// archFor maps a GOARCH value to the published architecture name.
func archFor(goarch string) (Arch, error) {
	switch goarch {
	case "amd64":
		return ArchAmd64, nil
	case "386":
		return ArchI386, nil
	case "arm":
		return ArchArm32v7, nil
	case "arm64":
		return ArchArm64v8, nil
	case "ppc64le":
		return ArchPpc64le, nil
	default:
		return "", fmt.Errorf("%w: GOARCH %s", ErrUnsupportedPlatform, goarch)
	}
}
