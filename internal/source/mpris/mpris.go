// Package mpris implements a remote playback source that controls
// another media player over D-Bus using the MPRIS interface. The
// playback itself happens in the remote player; quaver only sends
// transport commands and reads self-reported state.
package mpris

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/lmehl/quaver/internal/source"
)

const (
	objectPath      = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"

	// Remote sources self-report; their snapshot is trusted but
	// refreshed at a bounded interval so the exclusivity check never
	// acts on stale reads.
	refreshInterval = 2 * time.Second
)

// Conn is the subset of the D-Bus connection used by the source,
// extracted so tests can fake the bus.
type Conn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

// Source drives one MPRIS player identified by its well-known bus name,
// e.g. "org.mpris.MediaPlayer2.spotify".
type Source struct {
	name    string
	busName string
	conn    Conn
	obj     dbus.BusObject
	log     zerolog.Logger

	mu        sync.Mutex
	snapshot  *source.Snapshot
	refreshed time.Time
}

// New connects to the session bus and binds to the given MPRIS bus
// name. name is the registry name for this source ("spotify", "vlc"...).
func New(name, busName string, log zerolog.Logger) (*Source, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("mpris %s: session bus: %w", name, err)
	}
	return newWithConn(name, busName, conn, log), nil
}

func newWithConn(name, busName string, conn Conn, log zerolog.Logger) *Source {
	return &Source{
		name:    name,
		busName: busName,
		conn:    conn,
		obj:     conn.Object(busName, dbus.ObjectPath(objectPath)),
		log:     log.With().Str("component", "mpris").Str("source", name).Logger(),
	}
}

func (s *Source) Name() string { return s.name }

func (s *Source) Capabilities() source.Capability {
	return source.CapPlay | source.CapPause | source.CapStop |
		source.CapNext | source.CapPrev | source.CapSetVolume |
		source.CapQueryPlayback | source.CapShutdown
}

func (s *Source) call(method string) error {
	if err := s.obj.Call(playerInterface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("mpris %s: %s: %w", s.name, method, err)
	}
	s.invalidate()
	return nil
}

func (s *Source) Play(_ []string) error { return s.call("Play") }

func (s *Source) Pause() error { return s.call("Pause") }

func (s *Source) Stop() error { return s.call("Stop") }

func (s *Source) Next() error { return s.call("Next") }

func (s *Source) Prev() error { return s.call("Previous") }

func (s *Source) SetVolume(level float64) error {
	if err := s.obj.SetProperty(playerInterface+".Volume", dbus.MakeVariant(level)); err != nil {
		return fmt.Errorf("mpris %s: set volume: %w", s.name, err)
	}
	return nil
}

// CurrentPlayback returns the cached snapshot, refreshing it from the
// remote player when it is older than the refresh interval.
func (s *Source) CurrentPlayback() (*source.Snapshot, error) {
	s.mu.Lock()
	if s.snapshot != nil && time.Since(s.refreshed) < refreshInterval {
		snap := *s.snapshot
		s.mu.Unlock()
		return &snap, nil
	}
	s.mu.Unlock()

	snap, err := s.query()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = snap
	s.refreshed = time.Now()
	s.mu.Unlock()

	if snap == nil {
		return nil, nil
	}
	out := *snap
	return &out, nil
}

func (s *Source) query() (*source.Snapshot, error) {
	status, err := s.obj.GetProperty(playerInterface + ".PlaybackStatus")
	if err != nil {
		return nil, fmt.Errorf("mpris %s: playback status: %w", s.name, err)
	}
	statusStr, _ := status.Value().(string)
	if statusStr == "" || statusStr == "Stopped" {
		return nil, nil
	}

	snap := &source.Snapshot{
		IsPlaying: statusStr == "Playing",
		Taken:     time.Now(),
	}

	if meta, err := s.obj.GetProperty(playerInterface + ".Metadata"); err == nil {
		fillMetadata(snap, meta)
	} else {
		s.log.Debug().Err(err).Msg("metadata unavailable")
	}
	if pos, err := s.obj.GetProperty(playerInterface + ".Position"); err == nil {
		if micros, ok := pos.Value().(int64); ok {
			snap.Position = time.Duration(micros) * time.Microsecond
		}
	}
	return snap, nil
}

func fillMetadata(snap *source.Snapshot, v dbus.Variant) {
	meta, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return
	}
	if title, ok := meta["xesam:title"].Value().(string); ok {
		snap.TrackName = title
	}
	if artists, ok := meta["xesam:artist"].Value().([]string); ok && len(artists) > 0 {
		snap.Artist = artists[0]
	}
	if album, ok := meta["xesam:album"].Value().(string); ok {
		snap.Album = album
	}
	if genres, ok := meta["xesam:genre"].Value().([]string); ok && len(genres) > 0 {
		snap.Genre = genres[0]
	}
	if length, ok := meta["mpris:length"].Value().(int64); ok {
		snap.Duration = time.Duration(length) * time.Microsecond
	}
}

// invalidate drops the cached snapshot after a transport command so the
// next query reflects the command's effect.
func (s *Source) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

// Shutdown pauses the remote player if it is playing and closes the bus
// connection. The remote player keeps running; it just stops sounding.
func (s *Source) Shutdown() error {
	if snap, err := s.CurrentPlayback(); err == nil && snap != nil && snap.IsPlaying {
		if err := s.Pause(); err != nil {
			s.log.Warn().Err(err).Msg("pause on shutdown failed")
		}
	}
	return s.conn.Close()
}

var _ source.Source = (*Source)(nil)
