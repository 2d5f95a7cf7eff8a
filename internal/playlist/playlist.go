package playlist

import (
	"sync"
	"time"
)

// Track represents a single track in a playlist.
type Track struct {
	Path     string // file path or source-specific URI
	Title    string
	Artist   string
	Album    string
	Genre    string
	Duration time.Duration
}

// Name returns the display name for the track, falling back to the path.
func (t Track) Name() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Path
}

// Playlist holds an ordered collection of tracks. It is safe for
// concurrent use: the command path mutates it while the watchdog
// navigates over it.
type Playlist struct {
	mu     sync.RWMutex
	tracks []Track
}

// New creates a new empty playlist.
func New() *Playlist {
	return &Playlist{tracks: make([]Track, 0)}
}

// Add appends tracks to the playlist.
func (p *Playlist) Add(tracks ...Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracks = append(p.tracks, tracks...)
}

// Remove removes the track at the given index.
// Returns false if index is out of bounds.
func (p *Playlist) Remove(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.tracks) {
		return false
	}
	p.tracks = append(p.tracks[:index], p.tracks[index+1:]...)
	return true
}

// Replace swaps the playlist contents for the given tracks.
func (p *Playlist) Replace(tracks []Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracks = make([]Track, len(tracks))
	copy(p.tracks, tracks)
}

// Clear removes all tracks from the playlist.
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracks = p.tracks[:0]
}

// Tracks returns a copy of all tracks.
func (p *Playlist) Tracks() []Track {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// Track returns a copy of the track at the given index, or nil if out
// of bounds.
func (p *Playlist) Track(index int) *Track {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if index < 0 || index >= len(p.tracks) {
		return nil
	}
	t := p.tracks[index]
	return &t
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tracks)
}
