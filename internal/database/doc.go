// Package database runs administrative SQL against a running postgresql
// server: database existence checks, creation, removal and file-based
// migrations.
//
// Every call opens a short-lived connection through database/sql with the
// pgx driver and closes it before returning. Existence, creation and removal
// connect to the administrative "postgres" database.
package database
