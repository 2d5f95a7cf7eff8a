package source

import (
	"errors"
	"time"

	"github.com/lmehl/quaver/internal/engine"
)

// LocalName is the name of the built-in local decoder source. It is
// always loaded and is the failover target when another source goes
// away.
const LocalName = "local"

// Local adapts the local engine to the Source contract so the
// orchestrator can treat every source uniformly. Track navigation is
// not a local capability: the playback core owns the navigator and
// drives Play directly.
type Local struct {
	eng engine.Interface
}

// NewLocal wraps the given engine.
func NewLocal(eng engine.Interface) *Local {
	return &Local{eng: eng}
}

func (l *Local) Name() string { return LocalName }

func (l *Local) Capabilities() Capability {
	return CapPlay | CapPause | CapStop | CapSetVolume | CapQueryPlayback | CapShutdown
}

// Play starts the file given as the first argument.
func (l *Local) Play(args []string) error {
	if len(args) == 0 {
		return errors.New("local play: missing track path")
	}
	return l.eng.Play(args[0])
}

func (l *Local) Pause() error {
	l.eng.Pause()
	return nil
}

func (l *Local) Stop() error {
	l.eng.Stop()
	return nil
}

func (l *Local) Next() error { return errors.New("local: next is handled by the navigator") }

func (l *Local) Prev() error { return errors.New("local: prev is handled by the navigator") }

func (l *Local) SetVolume(level float64) error {
	l.eng.SetVolume(level)
	return nil
}

// CurrentPlayback live-queries the engine. The local engine is always
// the source of truth for its own state; nothing here is cached.
func (l *Local) CurrentPlayback() (*Snapshot, error) {
	info := l.eng.TrackInfo()
	if info == nil {
		return nil, nil
	}
	return &Snapshot{
		TrackName: info.Title,
		Artist:    info.Artist,
		Album:     info.Album,
		Genre:     info.Genre,
		Position:  l.eng.Position(),
		Duration:  l.eng.Duration(),
		IsPlaying: l.eng.State() == engine.Playing,
		Taken:     time.Now(),
	}, nil
}

func (l *Local) Shutdown() error {
	l.eng.Stop()
	return nil
}

var _ Source = (*Local)(nil)
