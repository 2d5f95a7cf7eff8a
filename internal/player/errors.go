package player

import (
	"errors"
	"fmt"
)

// Failures in this subsystem never terminate the process: every error
// here surfaces as a message and degrades playback to Stopped at worst.
var (
	// ErrSourceUnavailable means an operation targeted a source that
	// is not registered or not loaded.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEmptyPlaylist means a navigation or playback operation found
	// no tracks to act on.
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrCannotPause is returned for pause attempts while stopped.
	ErrCannotPause = errors.New("cannot pause: player is stopped")
)

// EngineError wraps a failure of the underlying audio engine. The
// player remains in (or reverts to) its prior state.
type EngineError struct {
	Op  string // "start", "stop", "resume"
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
