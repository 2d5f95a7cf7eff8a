// Package logging configures the process-wide zerolog logger. Terminal
// output stays clean for the interactive prompt; the structured log
// goes to a rotated file.
package logging

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lmehl/quaver/internal/config"
)

// New builds a logger writing to the configured rotated file. Returns a
// stderr logger as fallback when the log directory cannot be created.
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()
	}

	maxSize := cfg.Log.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := cfg.Log.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}
	return zerolog.New(sink).Level(level).With().Timestamp().Logger()
}
