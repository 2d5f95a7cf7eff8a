// Package engine drives the local audio output. The playback core never
// talks to beep directly: it holds an Interface so tests can substitute
// the Mock.
package engine

import "time"

// State represents the engine's playback state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Interface defines the engine contract for dependency injection and
// testing.
type Interface interface {
	Play(path string) error
	Stop()
	Pause()
	Resume()
	State() State
	// Busy reports whether the engine is still producing audio for the
	// current track. The watchdog polls it to detect natural
	// end-of-track.
	Busy() bool
	Position() time.Duration
	Duration() time.Duration
	SetVolume(level float64)
	Volume() float64
	TrackInfo() *TrackInfo
}

// Verify Engine implements Interface at compile time.
var _ Interface = (*Engine)(nil)
