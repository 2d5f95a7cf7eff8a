package engine

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"
)

// TrackInfo holds metadata for a decoded track.
type TrackInfo struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Genre    string
	Year     int
	Duration time.Duration
}

// ReadTrackInfo extracts tag metadata from an audio file. Tags are
// best-effort: on any failure the filename is used as the title and a
// non-nil TrackInfo is still returned, alongside the error.
func ReadTrackInfo(path string) (*TrackInfo, error) {
	info := &TrackInfo{
		Path:  path,
		Title: filepath.Base(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return info, err
	}

	if t := m.Title(); t != "" {
		info.Title = t
	}
	info.Artist = m.Artist()
	info.Album = m.Album()
	info.Genre = m.Genre()
	info.Year = m.Year()
	return info, nil
}
