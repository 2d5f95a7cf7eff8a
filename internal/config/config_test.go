package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFrom(nil)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DefaultVolume != 0.7 {
		t.Errorf("DefaultVolume = %v, want 0.7", cfg.DefaultVolume)
	}
	if cfg.SortMode != "name" {
		t.Errorf("SortMode = %q, want name", cfg.SortMode)
	}
	if cfg.WatchdogInterval() != 100*time.Millisecond {
		t.Errorf("WatchdogInterval = %v, want 100ms", cfg.WatchdogInterval())
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel())
	}
	if cfg.PlaylistsDir == "" {
		t.Error("PlaylistsDir should have a default")
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
library_sources = ["/music"]
default_volume = 0.5
shuffle = true
sort_mode = "date"
enabled_sources = ["spotify"]

[watchdog]
interval_ms = 250

[mpris.spotify]
bus_name = "org.mpris.MediaPlayer2.spotify"

[log]
level = "debug"
`)

	cfg, err := loadFrom([]string{path})
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.LibrarySources) != 1 || cfg.LibrarySources[0] != "/music" {
		t.Errorf("LibrarySources = %v", cfg.LibrarySources)
	}
	if cfg.DefaultVolume != 0.5 {
		t.Errorf("DefaultVolume = %v, want 0.5", cfg.DefaultVolume)
	}
	if !cfg.Shuffle {
		t.Error("Shuffle should be true")
	}
	if cfg.WatchdogInterval() != 250*time.Millisecond {
		t.Errorf("WatchdogInterval = %v, want 250ms", cfg.WatchdogInterval())
	}
	if got := cfg.Mpris["spotify"].BusName; got != "org.mpris.MediaPlayer2.spotify" {
		t.Errorf("mpris bus name = %q", got)
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel())
	}
}

func TestLoad_LaterFileWins(t *testing.T) {
	base := writeConfig(t, `default_volume = 0.3`)
	override := writeConfig(t, `default_volume = 0.9`)

	cfg, err := loadFrom([]string{base, override})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultVolume != 0.9 {
		t.Errorf("DefaultVolume = %v, want 0.9", cfg.DefaultVolume)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	path := writeConfig(t, `
default_volume = 3.5
sort_mode = "backwards"
`)

	cfg, err := loadFrom([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultVolume != 0.7 {
		t.Errorf("DefaultVolume = %v, want 0.7", cfg.DefaultVolume)
	}
	if cfg.SortMode != "name" {
		t.Errorf("SortMode = %q, want name", cfg.SortMode)
	}
}

func TestLoad_MissingFilesAreIgnored(t *testing.T) {
	cfg, err := loadFrom([]string{"/nonexistent/config.toml"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultVolume != 0.7 {
		t.Errorf("DefaultVolume = %v, want 0.7", cfg.DefaultVolume)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandPath("~/music"); got != filepath.Join(home, "music") {
		t.Errorf("expandPath(~/music) = %q", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("expandPath(/abs/path) = %q", got)
	}
}
