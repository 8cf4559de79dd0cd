// Package fetch describes the platform a postgresql distribution is built for
// and downloads that distribution.
//
// A Platform is the (OS, Arch, Version) triple that selects one binaries
// package. Its String form is the artifact classifier used by the Maven
// repository that publishes the zonky embedded-postgres binaries
// ("linux-amd64", "linux-arm64v8-alpine"). Fetcher is the seam through which
// callers inject an alternative source; MavenFetcher is the default.
package fetch
