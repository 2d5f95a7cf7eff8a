// Package source defines the contract every playback source implements
// and the registry that tracks which sources are available, enabled and
// loaded.
package source

import (
	"strings"
	"time"
)

// Capability is a bitmask of the operations a source supports. It is
// queried once at registration and cached, so the hot path never probes
// a source dynamically.
type Capability uint16

const (
	CapPlay Capability = 1 << iota
	CapPause
	CapStop
	CapNext
	CapPrev
	CapSetVolume
	CapQueryPlayback
	CapShutdown
)

// Has reports whether all bits in c2 are present in c.
func (c Capability) Has(c2 Capability) bool {
	return c&c2 == c2
}

// String returns a pipe-separated list of capability names.
func (c Capability) String() string {
	names := []struct {
		bit  Capability
		name string
	}{
		{CapPlay, "play"},
		{CapPause, "pause"},
		{CapStop, "stop"},
		{CapNext, "next"},
		{CapPrev, "prev"},
		{CapSetVolume, "set_volume"},
		{CapQueryPlayback, "query_playback"},
		{CapShutdown, "shutdown"},
	}
	var out []string
	for _, n := range names {
		if c.Has(n.bit) {
			out = append(out, n.name)
		}
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, "|")
}

// Snapshot is a source's self-reported playback state.
type Snapshot struct {
	TrackName string
	Artist    string
	Album     string
	Genre     string
	Position  time.Duration
	Duration  time.Duration
	IsPlaying bool
	Taken     time.Time
}

// Source is the contract the playback core consumes. Implementations
// return an error for operations that fail; the core treats an
// unsupported operation as absent via the capability mask rather than
// calling and failing.
type Source interface {
	Name() string
	Capabilities() Capability
	Play(args []string) error
	Pause() error
	Stop() error
	Next() error
	Prev() error
	SetVolume(level float64) error
	// CurrentPlayback returns the source's view of what is playing, or
	// nil if nothing is.
	CurrentPlayback() (*Snapshot, error)
	Shutdown() error
}

// Optional event hooks. A source implements only the ones it cares
// about; the registry detects them by interface assertion at load time
// and bridges matching bus events to them.

// StateListener is notified when the player state changes.
type StateListener interface {
	OnStateChanged(previous, current, sourceName string)
}

// TrackListener is notified when the current track changes.
type TrackListener interface {
	OnTrackChanged(previous, current string)
}

// SourceListener is notified when the active source changes.
type SourceListener interface {
	OnSourceChanged(previous, current string)
}

// VolumeListener is notified when the volume level changes.
type VolumeListener interface {
	OnVolumeChanged(previous, current float64)
}
