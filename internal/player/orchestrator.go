package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lmehl/quaver/internal/engine"
	"github.com/lmehl/quaver/internal/source"
)

const (
	stopConfirmAttempts = 5
	stopConfirmDelay    = 20 * time.Millisecond
)

// Orchestrator owns the active-source pointer and enforces the
// at-most-one-playing invariant across sources. Both the command path
// and the watchdog go through it; the whole check-then-switch sequence
// is serialized behind its mutex so no interleaving can leave two
// sources playing at once.
type Orchestrator struct {
	mu     sync.Mutex
	reg    *source.Registry
	info   *InfoStore
	eng    engine.Interface
	log    zerolog.Logger
	active string
}

// NewOrchestrator creates an orchestrator with the local source active.
func NewOrchestrator(reg *source.Registry, info *InfoStore, eng engine.Interface, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		reg:    reg,
		info:   info,
		eng:    eng,
		log:    log.With().Str("component", "orchestrator").Logger(),
		active: source.LocalName,
	}
}

// Active returns the name of the source currently authorized to
// produce audio.
func (o *Orchestrator) Active() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// EnsureExclusive makes the named source the single active one. If the
// outgoing source is playing it is stopped (or paused, when stop is
// unsupported) and the switch waits briefly for it to confirm going
// quiet. Failure to confirm is logged but never blocks the switch: a
// misbehaving source must not starve the rest of the system. On a
// successful switch the track fields of the shared playback record are
// reset and exactly one SOURCE_CHANGED event is published.
func (o *Orchestrator) EnsureExclusive(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active == name {
		return nil
	}
	if name != source.LocalName {
		if _, err := o.reg.Get(name); err != nil {
			return fmt.Errorf("switch to %s: %w", name, ErrSourceUnavailable)
		}
	}

	previous := o.active
	o.quiesce(previous)

	o.active = name
	o.info.Apply(Update{
		Source:    &name,
		TrackName: ptr(""),
		Artist:    ptr(""),
		Album:     ptr(""),
		Genre:     ptr(""),
		Position:  ptr(time.Duration(0)),
		Duration:  ptr(time.Duration(0)),
	})

	o.log.Info().Str("previous", previous).Str("new", name).Msg("active source switched")
	return nil
}

// quiesce forces the outgoing source out of audible playback.
func (o *Orchestrator) quiesce(name string) {
	if !o.sourcePlaying(name) {
		return
	}

	src, err := o.reg.Get(name)
	if err != nil {
		o.log.Warn().Str("source", name).Msg("outgoing source vanished during switch")
		return
	}
	caps, _ := o.reg.Capabilities(name)

	switch {
	case caps.Has(source.CapStop):
		if err := src.Stop(); err != nil {
			o.log.Warn().Err(err).Str("source", name).Msg("stop of outgoing source failed")
		}
	case caps.Has(source.CapPause):
		if err := src.Pause(); err != nil {
			o.log.Warn().Err(err).Str("source", name).Msg("pause of outgoing source failed")
		}
	default:
		o.log.Warn().Str("source", name).Msg("outgoing source supports neither stop nor pause")
		return
	}

	// A bounded number of short polls for the engine to go quiet. The
	// switch proceeds regardless of the outcome.
	for i := 0; i < stopConfirmAttempts; i++ {
		if !o.sourcePlaying(name) {
			return
		}
		time.Sleep(stopConfirmDelay)
	}
	o.log.Warn().Str("source", name).Msg("source did not confirm stop, switching anyway")
}

// sourcePlaying reports whether the named source is audibly playing.
// The local engine is always live-queried; remote sources are trusted
// to self-report through their bounded-interval snapshot.
func (o *Orchestrator) sourcePlaying(name string) bool {
	if name == source.LocalName {
		return o.eng.State() == engine.Playing
	}
	src, err := o.reg.Get(name)
	if err != nil {
		return false
	}
	snap, err := src.CurrentPlayback()
	if err != nil {
		o.log.Warn().Err(err).Str("source", name).Msg("playback query failed")
		return false
	}
	return snap != nil && snap.IsPlaying
}
