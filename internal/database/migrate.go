package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/giantswarm/pgenv/internal/pgerr"
)

// downSuffix marks the revert half of a reversible migration pair. Those
// files are never applied by Migrate.
const downSuffix = ".down.sql"

// Migrate applies every migration file in dir to database, one at a time in
// file name order, and stops at the first failure. Failures are reported as
// pgerr.ErrMigration with the offending file as Path.
//
// Applied migrations are not recorded, so Migrate is meant for freshly
// created databases.
func (c *Client) Migrate(ctx context.Context, database, dir string) error {
	files, err := migrationFiles(dir)
	if err != nil {
		return pgerr.WithPath(pgerr.ErrMigration, dir, err)
	}
	if len(files) == 0 {
		c.log.Debug("no migrations found", "dir", dir)
		return nil
	}

	db, err := c.open(ctx, database)
	if err != nil {
		return pgerr.New(pgerr.ErrMigration, fmt.Errorf("connect to %s: %w", database, err))
	}
	defer db.Close() //nolint:errcheck // short-lived connection

	for _, path := range files {
		script, err := os.ReadFile(path) //nolint:gosec // G304: caller-configured migration directory
		if err != nil {
			return pgerr.WithPath(pgerr.ErrMigration, path, err)
		}
		// Without arguments pgx uses the simple query protocol, which
		// accepts several statements per file.
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return pgerr.WithPath(pgerr.ErrMigration, path, err)
		}
		c.log.Debug("applied migration", "database", database, "file", filepath.Base(path))
	}

	c.log.Info("migrations applied", "database", database, "count", len(files))
	return nil
}

// migrationFiles returns the .sql files directly inside dir, sorted by name,
// excluding revert scripts.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, downSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
