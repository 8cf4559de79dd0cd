package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/pgenv/internal/pgerr"
)

// DefaultMavenHost is the repository MavenFetcher downloads from when Host is empty.
const DefaultMavenHost = "https://repo1.maven.org"

// defaultHTTPTimeout bounds a single download when MavenFetcher.Client is nil.
const defaultHTTPTimeout = 5 * time.Minute

// Fetcher downloads the binaries package for a platform and returns its bytes
// (a zip container).
type Fetcher interface {
	Fetch(ctx context.Context, p Platform) ([]byte, error)
}

// Compile-time interface satisfaction check.
var _ Fetcher = (*MavenFetcher)(nil)

// MavenFetcher downloads zonky embedded-postgres binaries from a Maven
// repository.
type MavenFetcher struct {
	Host   string       // repository base URL; DefaultMavenHost when empty
	Client *http.Client // nil uses a client with a five minute timeout
}

// URL returns the download location of the package for p.
func (f *MavenFetcher) URL(p Platform) string {
	host := f.Host
	if host == "" {
		host = DefaultMavenHost
	}
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf(
		"%s/maven2/io/zonky/test/postgres/embedded-postgres-binaries-%s/%s/embedded-postgres-binaries-%s-%s.jar",
		host, p, p.Version, p, p.Version,
	)
}

// Fetch downloads the package for p. Every failure, including a non-200
// response, is reported as pgerr.ErrDownloadFailure.
func (f *MavenFetcher) Fetch(ctx context.Context, p Platform) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, pgerr.New(pgerr.ErrDownloadFailure, err)
	}

	url := f.URL(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pgerr.WithPath(pgerr.ErrDownloadFailure, url, err)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, pgerr.WithPath(pgerr.ErrDownloadFailure, url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // body fully consumed or discarded

	if resp.StatusCode != http.StatusOK {
		return nil, pgerr.WithPath(pgerr.ErrDownloadFailure, url,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pgerr.WithPath(pgerr.ErrDownloadFailure, url, err)
	}
	return data, nil
}

func (f *MavenFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}
