package main

import "time"

// GlobalFlags holds persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string // optional TOML file with the same keys as the flags
	LogLevel   string
	LogFile    string // rotated with lumberjack when set; stderr otherwise
}

// StartFlags holds the configuration of the start command. Flag structs
// decouple cobra from the command logic for testing.
type StartFlags struct {
	DatabaseDir  string
	CacheDir     string
	Port         int
	User         string
	Password     string
	AuthMethod   string
	Version      string
	Persistent   bool
	Timeout      time.Duration
	ReadyTimeout time.Duration
	MigrationDir string
	Databases    []string // created if missing, then migrated
}

// PurgeFlags holds the configuration of the purge command.
type PurgeFlags struct {
	CacheDir string
	Version  string
	Timeout  time.Duration
}
