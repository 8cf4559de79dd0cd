package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/giantswarm/pgenv"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Log rotation defaults for --log-file.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 7
)

// setupLogging installs a text slog handler at level, writing to a rotated
// file when path is set and to stderr otherwise. The returned closer flushes
// the file.
func setupLogging(level, path string) (io.Closer, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	var out io.WriteCloser = nopCloser{os.Stderr}
	if path != "" {
		out = &lj.Logger{
			Filename:   path,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	pgenv.SetLogger(logger.With("component", "pgenv"))
	return out, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
