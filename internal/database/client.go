package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/giantswarm/pgenv/internal/pgerr"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// AdminDatabase is the database administrative statements connect to.
const AdminDatabase = "postgres"

const driverName = "pgx"

// URIFunc returns the connection URI for the named database.
type URIFunc func(database string) string

// Client issues SQL against one server.
type Client struct {
	uri URIFunc
	log *slog.Logger
}

// NewClient returns a Client connecting through uri. A nil logger uses
// slog.Default().
func NewClient(uri URIFunc, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{uri: uri, log: logger}
}

// open connects to database and verifies the connection.
func (c *Client) open(ctx context.Context, database string) (*sql.DB, error) {
	db, err := sql.Open(driverName, c.uri(database))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// withAdmin runs fn on a fresh connection to AdminDatabase.
func (c *Client) withAdmin(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := c.open(ctx, AdminDatabase)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // short-lived connection
	return fn(db)
}

// Ping reports whether the server accepts connections to AdminDatabase.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.withAdmin(ctx, func(*sql.DB) error { return nil }); err != nil {
		return pgerr.New(pgerr.ErrSQL, fmt.Errorf("ping: %w", err))
	}
	return nil
}

// Exists reports whether a database called name exists.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := c.withAdmin(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name,
		).Scan(&exists)
	})
	if err != nil {
		return false, pgerr.New(pgerr.ErrSQL, fmt.Errorf("check database %s: %w", name, err))
	}
	return exists, nil
}

// Create creates a database called name. It fails if one already exists.
func (c *Client) Create(ctx context.Context, name string) error {
	err := c.withAdmin(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, "CREATE DATABASE "+quoteIdent(name))
		return err
	})
	if err != nil {
		return pgerr.New(pgerr.ErrSQL, fmt.Errorf("create database %s: %w", name, err))
	}
	c.log.Debug("created database", "database", name)
	return nil
}

// Drop removes the database called name. A missing database is not an error.
func (c *Client) Drop(ctx context.Context, name string) error {
	err := c.withAdmin(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+quoteIdent(name))
		return err
	})
	if err != nil {
		return pgerr.New(pgerr.ErrSQL, fmt.Errorf("drop database %s: %w", name, err))
	}
	c.log.Debug("dropped database", "database", name)
	return nil
}

// quoteIdent quotes name for use as an SQL identifier.
func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
