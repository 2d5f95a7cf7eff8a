package player

import (
	"time"

	"github.com/lmehl/quaver/internal/playlist"
)

// stateHandler implements the per-state behavior of the player. Each
// method is invoked with the player mutex held; the current handler is
// selected by the player's state at call time, so unreachable
// transitions simply do not exist as code paths.
type stateHandler interface {
	play(p *Player) error
	pause(p *Player) error
	stop(p *Player) error
	next(p *Player) error
	prev(p *Player) error
}

var handlers = map[State]stateHandler{
	Stopped: stoppedState{},
	Playing: playingState{},
	Paused:  pausedState{},
}

type stoppedState struct{}
type playingState struct{}
type pausedState struct{}

// -- Stopped --------------------------------------------------------

// play starts the track under the navigator cursor. On an engine
// failure the player stays Stopped and no events are published.
func (stoppedState) play(p *Player) error {
	track := p.nav.Current()
	if track == nil {
		return ErrEmptyPlaylist
	}
	if err := p.eng.Play(track.Path); err != nil {
		return &EngineError{Op: "start", Err: err}
	}

	p.state = Playing
	p.startTime = p.now()

	duration := track.Duration
	if d := p.eng.Duration(); d > 0 {
		duration = d
	}
	p.info.Apply(Update{
		State:     ptr(Playing),
		TrackName: ptr(track.Name()),
		Artist:    ptr(track.Artist),
		Album:     ptr(track.Album),
		Genre:     ptr(track.Genre),
		Position:  ptr(time.Duration(0)),
		Duration:  ptr(duration),
	})
	return nil
}

func (stoppedState) pause(p *Player) error { return ErrCannotPause }

func (stoppedState) stop(p *Player) error { return nil }

// next stages the following track without starting playback.
func (stoppedState) next(p *Player) error { return stageLocked(p, playlist.Next) }

func (stoppedState) prev(p *Player) error { return stageLocked(p, playlist.Prev) }

// -- Playing --------------------------------------------------------

func (playingState) play(p *Player) error { return nil }

func (playingState) pause(p *Player) error {
	p.eng.Pause()
	p.state = Paused
	p.pausedAt = p.now()
	p.info.Apply(Update{
		State:    ptr(Paused),
		Position: ptr(p.elapsedLocked()),
	})
	return nil
}

func (playingState) stop(p *Player) error {
	p.eng.Stop()
	p.state = Stopped
	p.info.Apply(Update{
		State:    ptr(Stopped),
		Position: ptr(time.Duration(0)),
	})
	return nil
}

func (playingState) next(p *Player) error { return p.advanceLocked(playlist.Next) }

func (playingState) prev(p *Player) error { return p.advanceLocked(playlist.Prev) }

// -- Paused ---------------------------------------------------------

// play resumes. The pause gap is added to the start-time baseline so
// the reported position picks up where it left off.
func (pausedState) play(p *Player) error {
	p.eng.Resume()
	p.startTime = p.startTime.Add(p.now().Sub(p.pausedAt))
	p.state = Playing
	p.info.Apply(Update{
		State:    ptr(Playing),
		Position: ptr(p.elapsedLocked()),
	})
	return nil
}

func (pausedState) pause(p *Player) error { return nil }

func (pausedState) stop(p *Player) error {
	p.eng.Stop()
	p.state = Stopped
	p.info.Apply(Update{
		State:    ptr(Stopped),
		Position: ptr(time.Duration(0)),
	})
	return nil
}

func (pausedState) next(p *Player) error { return p.advanceLocked(playlist.Next) }

func (pausedState) prev(p *Player) error { return p.advanceLocked(playlist.Prev) }

// stageLocked moves the cursor while stopped and updates the shared
// record so observers see the staged track.
func stageLocked(p *Player, d playlist.Direction) error {
	track := p.nav.Navigate(d)
	if track == nil {
		return ErrEmptyPlaylist
	}
	p.info.Apply(Update{
		TrackName: ptr(track.Name()),
		Artist:    ptr(track.Artist),
		Album:     ptr(track.Album),
		Genre:     ptr(track.Genre),
		Position:  ptr(time.Duration(0)),
		Duration:  ptr(track.Duration),
	})
	return nil
}
