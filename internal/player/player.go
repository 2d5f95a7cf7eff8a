// Package player is the playback core: it owns the state machine, the
// active-source orchestration, track navigation and the end-of-track
// watchdog, and publishes every observable change on the event bus.
package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lmehl/quaver/internal/engine"
	"github.com/lmehl/quaver/internal/event"
	"github.com/lmehl/quaver/internal/playlist"
	"github.com/lmehl/quaver/internal/source"
)

const watchdogStopTimeout = 2 * time.Second

// Player is the facade the command layer talks to. All public methods
// are safe for concurrent use; the mutex serializes the command path
// against the watchdog.
type Player struct {
	mu        sync.Mutex
	state     State
	startTime time.Time
	pausedAt  time.Time
	running   bool

	eng  engine.Interface
	reg  *source.Registry
	orch *Orchestrator
	nav  *playlist.Navigator
	list *playlist.Playlist
	info *InfoStore
	bus  *event.Bus
	wd   *Watchdog
	log  zerolog.Logger
	now  func() time.Time
}

// New wires a player around the given engine, registry and bus. The
// registry's failover callback is pointed at the orchestrator so a
// disabled source always hands playback back before teardown.
func New(eng engine.Interface, reg *source.Registry, bus *event.Bus, list *playlist.Playlist, watchdogInterval time.Duration, log zerolog.Logger) *Player {
	info := NewInfoStore(bus, nil)
	p := &Player{
		state: Stopped,
		eng:   eng,
		reg:   reg,
		orch:  NewOrchestrator(reg, info, eng, log),
		nav:   playlist.NewNavigator(list, time.Now().UnixNano()),
		list:  list,
		info:  info,
		bus:   bus,
		log:   log.With().Str("component", "player").Logger(),
		now:   time.Now,
	}
	p.wd = NewWatchdog(watchdogInterval, p.watchdogTick, log)
	reg.SetFailover(p.orch.EnsureExclusive)
	return p
}

// Start marks the player running and launches the watchdog.
func (p *Player) Start() {
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()
	p.wd.Start()
}

// Navigator exposes the track cursor for the command layer.
func (p *Player) Navigator() *playlist.Navigator { return p.nav }

// Playlist exposes the live playlist.
func (p *Player) Playlist() *playlist.Playlist { return p.list }

// ActiveSource returns the name of the source currently authorized to
// play.
func (p *Player) ActiveSource() string { return p.orch.Active() }

// State returns the current player state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Play starts or resumes local playback. Play always claims local
// exclusivity first: pressing play while a remote source holds the
// floor pulls playback back to the local engine.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.orch.EnsureExclusive(source.LocalName); err != nil {
		return err
	}
	return handlers[p.state].play(p)
}

// PlayIndex jumps the cursor to the given playlist index and plays it.
func (p *Player) PlayIndex(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.orch.EnsureExclusive(source.LocalName); err != nil {
		return err
	}
	if p.nav.JumpTo(index) == nil {
		return fmt.Errorf("no track at index %d", index)
	}
	if p.state != Stopped {
		p.eng.Stop()
		p.state = Stopped
	}
	return handlers[p.state].play(p)
}

// Pause pauses the active source. For a remote source the command is
// forwarded when the source supports it.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name := p.orch.Active(); name != source.LocalName {
		return p.forwardLocked(name, source.CapPause, source.Source.Pause)
	}
	return handlers[p.state].pause(p)
}

// Stop stops the active source. A remote source that cannot stop is
// paused instead; a source that can do neither is an error.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := p.orch.Active()
	if name == source.LocalName {
		return handlers[p.state].stop(p)
	}

	src, caps, err := p.remoteLocked(name)
	if err != nil {
		return err
	}
	switch {
	case caps.Has(source.CapStop):
		return src.Stop()
	case caps.Has(source.CapPause):
		p.log.Debug().Str("source", name).Msg("stop unsupported, pausing instead")
		return src.Pause()
	default:
		return fmt.Errorf("source %s supports neither stop nor pause", name)
	}
}

// NextTrack advances to the next track on the active source.
func (p *Player) NextTrack() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name := p.orch.Active(); name != source.LocalName {
		return p.forwardLocked(name, source.CapNext, source.Source.Next)
	}
	return handlers[p.state].next(p)
}

// PreviousTrack retreats to the previous track on the active source.
func (p *Player) PreviousTrack() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name := p.orch.Active(); name != source.LocalName {
		return p.forwardLocked(name, source.CapPrev, source.Source.Prev)
	}
	return handlers[p.state].prev(p)
}

// SetVolume sets the volume on the active source and announces the
// change.
func (p *Player) SetVolume(level float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	previous := p.eng.Volume()
	if name := p.orch.Active(); name != source.LocalName {
		err := p.forwardLocked(name, source.CapSetVolume, func(s source.Source) error {
			return s.SetVolume(level)
		})
		if err != nil {
			return err
		}
	} else {
		p.eng.SetVolume(level)
		level = p.eng.Volume()
	}

	p.bus.Publish(event.VolumeChanged, event.VolumeChange{Previous: previous, New: level})
	return nil
}

// Volume returns the local engine volume level.
func (p *Player) Volume() float64 { return p.eng.Volume() }

// ToggleShuffle flips shuffle mode and returns the new setting.
func (p *Player) ToggleShuffle() bool {
	enabled := !p.nav.Shuffle()
	p.nav.SetShuffle(enabled)
	p.log.Info().Bool("shuffle", enabled).Msg("shuffle toggled")
	return enabled
}

// LoadTracks replaces the playlist. Active local playback is stopped
// and the cursor returns to the head of the new list.
func (p *Player) LoadTracks(tracks []playlist.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.orch.Active() == source.LocalName && p.state != Stopped {
		if err := handlers[p.state].stop(p); err != nil {
			return err
		}
	}
	p.list.Replace(tracks)
	p.nav.Reset()
	p.log.Info().Int("tracks", len(tracks)).Msg("playlist loaded")
	return nil
}

// UseSource makes the named source the active one.
func (p *Player) UseSource(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name != source.LocalName && !p.reg.IsLoaded(name) {
		return fmt.Errorf("use %s: %w", name, ErrSourceUnavailable)
	}
	return p.handoffLocked(name)
}

// PlaySource switches exclusivity to the named source and issues a play
// command there.
func (p *Player) PlaySource(name string, args []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.handoffLocked(name); err != nil {
		return err
	}
	if name == source.LocalName {
		return handlers[p.state].play(p)
	}
	return p.forwardLocked(name, source.CapPlay, func(s source.Source) error {
		return s.Play(args)
	})
}

// EnableSource loads a registered source.
func (p *Player) EnableSource(name string) error {
	return p.reg.Enable(name)
}

// DisableSource unloads a source, failing playback over to the local
// engine first if the source was active.
func (p *Player) DisableSource(name string) error {
	if name == source.LocalName {
		return fmt.Errorf("the local source cannot be disabled")
	}
	return p.reg.Disable(name, source.LocalName)
}

// Sources lists every known source and its status.
func (p *Player) Sources() []source.Status { return p.reg.List() }

// Status returns a snapshot of the shared playback record with the
// position computed live for local playback.
func (p *Player) Status() Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := p.info.Snapshot()
	if p.orch.Active() == source.LocalName && p.state.IsActive() {
		snap.Position = p.elapsedLocked()
	}
	return snap
}

// CurrentPlayback asks the active source what it is playing and folds
// the answer into the shared record, so a track change on a remote
// source surfaces as a TrackChanged event.
func (p *Player) CurrentPlayback() (*source.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := p.orch.Active()
	src, err := p.reg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("playback query: %w", ErrSourceUnavailable)
	}
	snap, err := src.CurrentPlayback()
	if err != nil {
		return nil, err
	}
	if snap != nil && name != source.LocalName {
		p.info.Apply(Update{
			TrackName: ptr(snap.TrackName),
			Artist:    ptr(snap.Artist),
			Album:     ptr(snap.Album),
			Genre:     ptr(snap.Genre),
			Position:  ptr(snap.Position),
			Duration:  ptr(snap.Duration),
		})
	}
	return snap, nil
}

// Shutdown tears the subsystem down in dependency order: no new
// watchdog work, local playback stopped, exclusivity returned to the
// local source, sources notified, watchdog joined, bus closed. Source
// notification is best-effort; one failing source never blocks the
// rest.
func (p *Player) Shutdown() {
	p.mu.Lock()
	p.running = false
	if err := handlers[p.state].stop(p); err != nil {
		p.log.Warn().Err(err).Msg("stop during shutdown failed")
	}
	if err := p.orch.EnsureExclusive(source.LocalName); err != nil {
		p.log.Warn().Err(err).Msg("switch to local during shutdown failed")
	}
	p.mu.Unlock()

	p.reg.ShutdownAll()
	p.wd.Stop(watchdogStopTimeout)
	p.bus.Close()
	p.log.Info().Msg("player shut down")
}

// watchdogTick runs on every watchdog interval: it refreshes the
// position while playing and auto-advances when the engine has drained
// the current track.
func (p *Player) watchdogTick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || p.state != Playing || p.orch.Active() != source.LocalName {
		return
	}
	if p.eng.Busy() {
		p.info.Apply(Update{Position: ptr(p.elapsedLocked())})
		return
	}
	if p.eng.State() != engine.Playing {
		// Stopped out from under us; realign without advancing.
		p.state = Stopped
		p.info.Apply(Update{State: ptr(Stopped), Position: ptr(time.Duration(0))})
		return
	}

	if err := p.advanceLocked(playlist.Next); err != nil {
		p.log.Warn().Err(err).Msg("auto-advance failed")
	}
}

// advanceLocked composes stop, navigate and play into one step. The
// intermediate Stopped state is internal only: the shared record sees a
// single track change and, when playback was already active, no state
// flicker.
func (p *Player) advanceLocked(d playlist.Direction) error {
	p.eng.Stop()
	p.state = Stopped

	if p.nav.Navigate(d) == nil {
		p.info.Apply(Update{State: ptr(Stopped), Position: ptr(time.Duration(0))})
		return ErrEmptyPlaylist
	}
	if err := (stoppedState{}).play(p); err != nil {
		p.info.Apply(Update{State: ptr(Stopped), Position: ptr(time.Duration(0))})
		return err
	}
	return nil
}

// handoffLocked switches the active source. Leaving local while the
// state machine is active first stops playback through the state
// machine, so the machine never claims Playing over a quiesced engine.
func (p *Player) handoffLocked(name string) error {
	if p.orch.Active() == source.LocalName && name != source.LocalName && p.state != Stopped {
		if err := handlers[p.state].stop(p); err != nil {
			return err
		}
	}
	return p.orch.EnsureExclusive(name)
}

// remoteLocked resolves a loaded remote source and its cached
// capability mask.
func (p *Player) remoteLocked(name string) (source.Source, source.Capability, error) {
	src, err := p.reg.Get(name)
	if err != nil {
		return nil, 0, fmt.Errorf("source %s: %w", name, ErrSourceUnavailable)
	}
	caps, err := p.reg.Capabilities(name)
	if err != nil {
		return nil, 0, fmt.Errorf("source %s: %w", name, ErrSourceUnavailable)
	}
	return src, caps, nil
}

// forwardLocked sends a command to a remote source after checking the
// cached capability mask.
func (p *Player) forwardLocked(name string, cap source.Capability, fn func(source.Source) error) error {
	src, caps, err := p.remoteLocked(name)
	if err != nil {
		return err
	}
	if !caps.Has(cap) {
		return fmt.Errorf("source %s does not support %s", name, cap)
	}
	return fn(src)
}

// elapsedLocked computes the playback position from the start-time
// baseline, clamped to the track duration when known.
func (p *Player) elapsedLocked() time.Duration {
	var elapsed time.Duration
	switch p.state {
	case Playing:
		elapsed = p.now().Sub(p.startTime)
	case Paused:
		elapsed = p.pausedAt.Sub(p.startTime)
	default:
		return 0
	}
	if elapsed < 0 {
		return 0
	}
	if d := p.info.Snapshot().Duration; d > 0 && elapsed > d {
		return d
	}
	return elapsed
}
