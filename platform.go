package pgenv

import "github.com/giantswarm/pgenv/internal/fetch"

// Platform selects one published binaries package by operating system,
// architecture and version.
type Platform = fetch.Platform

// OS is an operating system with published binaries.
type OS = fetch.OS

// Arch is a CPU architecture with published binaries.
type Arch = fetch.Arch

// Version is a published binaries version.
type Version = fetch.Version

// Supported operating systems.
const (
	OSDarwin  = fetch.OSDarwin
	OSWindows = fetch.OSWindows
	OSLinux   = fetch.OSLinux
	OSAlpine  = fetch.OSAlpine
)

// Supported architectures.
const (
	ArchAmd64   = fetch.ArchAmd64
	ArchI386    = fetch.ArchI386
	ArchArm32v6 = fetch.ArchArm32v6
	ArchArm32v7 = fetch.ArchArm32v7
	ArchArm64v8 = fetch.ArchArm64v8
	ArchPpc64le = fetch.ArchPpc64le
)

// Published postgresql versions.
const (
	V16 = fetch.V16
	V15 = fetch.V15
	V14 = fetch.V14
	V13 = fetch.V13
	V12 = fetch.V12
)

// Fetcher downloads the binaries package for a Platform. Implementations
// must report failures wrapping ErrDownloadFailure or the Server wraps them.
type Fetcher = fetch.Fetcher

// MavenFetcher downloads packages from a Maven repository, by default
// https://repo1.maven.org. It is the Fetcher used when none is configured.
type MavenFetcher = fetch.MavenFetcher

// HostPlatform returns the Platform of the running process for version v.
// It returns an error wrapping ErrUnsupportedPlatform when no binaries are
// published for the host.
func HostPlatform(v Version) (Platform, error) {
	return fetch.HostPlatform(v)
}
