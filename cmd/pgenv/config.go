package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every flag name to form its environment
// variable, e.g. PGENV_DATABASE_DIR for --database-dir.
const envPrefix = "PGENV"

// newViper returns a viper instance bound to the flags of cmd, the PGENV_*
// environment and, when configPath is set, a TOML config file. Precedence is
// flag, environment, config file, flag default.
func newViper(cmd *cobra.Command, configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}
	return v, nil
}

// loadGlobalFlags resolves the persistent flags of cmd.
func loadGlobalFlags(cmd *cobra.Command, configPath string) (GlobalFlags, error) {
	v, err := newViper(cmd, configPath)
	if err != nil {
		return GlobalFlags{}, err
	}
	return GlobalFlags{
		ConfigPath: configPath,
		LogLevel:   v.GetString("log-level"),
		LogFile:    v.GetString("log-file"),
	}, nil
}

// loadStartFlags resolves the start command configuration.
func loadStartFlags(cmd *cobra.Command, configPath string) (StartFlags, error) {
	v, err := newViper(cmd, configPath)
	if err != nil {
		return StartFlags{}, err
	}
	return StartFlags{
		DatabaseDir:  v.GetString("database-dir"),
		CacheDir:     v.GetString("cache-dir"),
		Port:         v.GetInt("port"),
		User:         v.GetString("user"),
		Password:     v.GetString("password"),
		AuthMethod:   v.GetString("auth-method"),
		Version:      v.GetString("pg-version"),
		Persistent:   v.GetBool("persistent"),
		Timeout:      v.GetDuration("timeout"),
		ReadyTimeout: v.GetDuration("ready-timeout"),
		MigrationDir: v.GetString("migration-dir"),
		Databases:    v.GetStringSlice("database"),
	}, nil
}

// loadPurgeFlags resolves the purge command configuration.
func loadPurgeFlags(cmd *cobra.Command, configPath string) (PurgeFlags, error) {
	v, err := newViper(cmd, configPath)
	if err != nil {
		return PurgeFlags{}, err
	}
	return PurgeFlags{
		CacheDir: v.GetString("cache-dir"),
		Version:  v.GetString("pg-version"),
		Timeout:  v.GetDuration("timeout"),
	}, nil
}
