// Package config loads the quaver configuration from TOML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music
	PlaylistsDir   string   `koanf:"playlists_dir"`   // where .txt playlists live
	DefaultVolume  float64  `koanf:"default_volume"`  // 0.0 - 1.0
	Shuffle        bool     `koanf:"shuffle"`
	SortMode       string   `koanf:"sort_mode"` // "name", "date" or "random"

	// Sources to enable at startup, beyond the always-on local one.
	EnabledSources []string `koanf:"enabled_sources"`

	Watchdog WatchdogConfig       `koanf:"watchdog"`
	Mpris    map[string]MprisSpec `koanf:"mpris"` // registry name -> bus binding
	Log      LogConfig            `koanf:"log"`
}

// WatchdogConfig tunes the end-of-track poller.
type WatchdogConfig struct {
	IntervalMs int `koanf:"interval_ms"`
}

// MprisSpec binds a source name to an MPRIS well-known bus name,
// e.g. "org.mpris.MediaPlayer2.spotify".
type MprisSpec struct {
	BusName string `koanf:"bus_name"`
}

// LogConfig controls the log file sink.
type LogConfig struct {
	Level      string `koanf:"level"` // zerolog level name, default "info"
	File       string `koanf:"file"`  // empty means the XDG state dir
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// Load reads the config files in priority order (last wins) and applies
// defaults.
func Load() (*Config, error) {
	return loadFrom(configPaths())
}

func loadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		DefaultVolume: 0.7,
		SortMode:      "name",
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.PlaylistsDir = expandPath(cfg.PlaylistsDir)
	if cfg.PlaylistsDir == "" {
		cfg.PlaylistsDir = filepath.Join(xdg.DataHome, "quaver", "playlists")
	}
	if cfg.DefaultVolume < 0 || cfg.DefaultVolume > 1 {
		cfg.DefaultVolume = 0.7
	}
	switch cfg.SortMode {
	case "name", "date", "random":
	default:
		cfg.SortMode = "name"
	}

	return cfg, nil
}

func configPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, "quaver", "config.toml"),
		"config.toml", // pwd, highest priority
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// WatchdogInterval returns the poll interval with the default applied.
func (c *Config) WatchdogInterval() time.Duration {
	if c.Watchdog.IntervalMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.Watchdog.IntervalMs) * time.Millisecond
}

// LogLevel returns the configured level name, defaulting to info.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}

// LogFile returns the log file path, defaulting to the XDG state dir.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return expandPath(c.Log.File)
	}
	return filepath.Join(xdg.StateHome, "quaver", "quaver.log")
}
