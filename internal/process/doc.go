// Package process runs the postgresql command-line tools (initdb, pg_ctl) as
// bounded child processes and polls servers for readiness.
//
// Run is the only place in the module that creates OS subprocesses. Children
// are placed in their own process group so a timed out command can be killed
// together with anything it spawned; on Linux they also receive SIGTERM if
// the parent dies.
package process
