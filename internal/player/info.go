package player

import (
	"sync"
	"time"

	"github.com/lmehl/quaver/internal/event"
	"github.com/lmehl/quaver/internal/source"
)

// Info is the single shared playback record read by status/display code
// and written by the orchestrator, the state machine and the watchdog.
type Info struct {
	Source    string
	TrackName string
	Artist    string
	Album     string
	Genre     string
	Position  time.Duration
	Duration  time.Duration
	State     State
	UpdatedAt time.Time
}

// Update is a partial mutation of Info. Nil fields are left untouched.
type Update struct {
	Source    *string
	TrackName *string
	Artist    *string
	Album     *string
	Genre     *string
	Position  *time.Duration
	Duration  *time.Duration
	State     *State
}

func ptr[T any](v T) *T { return &v }

// InfoStore funnels every mutation of the shared playback record
// through one entry point. No component mutates Info fields directly;
// Apply detects which of {state, source, track} changed and publishes
// the corresponding events.
type InfoStore struct {
	mu  sync.Mutex
	cur Info
	bus *event.Bus
	now func() time.Time
}

// NewInfoStore creates a store with the local source active and the
// player stopped.
func NewInfoStore(bus *event.Bus, clock func() time.Time) *InfoStore {
	if clock == nil {
		clock = time.Now
	}
	return &InfoStore{
		cur: Info{Source: source.LocalName, State: Stopped, UpdatedAt: clock()},
		bus: bus,
		now: clock,
	}
}

// Apply merges the update into the record and publishes one event per
// changed aspect. A track change to the empty string (the reset on a
// source switch) is not announced; SOURCE_CHANGED already covers it.
func (s *InfoStore) Apply(u Update) {
	s.mu.Lock()
	prev := s.cur

	if u.Source != nil {
		s.cur.Source = *u.Source
	}
	if u.TrackName != nil {
		s.cur.TrackName = *u.TrackName
	}
	if u.Artist != nil {
		s.cur.Artist = *u.Artist
	}
	if u.Album != nil {
		s.cur.Album = *u.Album
	}
	if u.Genre != nil {
		s.cur.Genre = *u.Genre
	}
	if u.Position != nil {
		s.cur.Position = *u.Position
	}
	if u.Duration != nil {
		s.cur.Duration = *u.Duration
	}
	if u.State != nil {
		s.cur.State = *u.State
	}

	// The timestamp is monotonic non-decreasing while playing.
	ts := s.now()
	if ts.Before(s.cur.UpdatedAt) && s.cur.State == Playing {
		ts = s.cur.UpdatedAt
	}
	s.cur.UpdatedAt = ts

	cur := s.cur
	s.mu.Unlock()

	if cur.State != prev.State {
		s.bus.Publish(event.StateChanged, event.StateChange{
			Previous: prev.State.String(),
			New:      cur.State.String(),
			Source:   cur.Source,
		})
	}
	if cur.Source != prev.Source {
		s.bus.Publish(event.SourceChanged, event.SourceChange{
			Previous: prev.Source,
			New:      cur.Source,
		})
	}
	if cur.TrackName != prev.TrackName && cur.TrackName != "" {
		s.bus.Publish(event.TrackChanged, event.TrackChange{
			Previous: prev.TrackName,
			New:      cur.TrackName,
		})
	}
	if u.Position != nil {
		s.bus.Publish(event.PositionChanged, event.PositionChange{
			Position: cur.Position,
			Duration: cur.Duration,
		})
	}
}

// Snapshot returns a copy of the current record.
func (s *InfoStore) Snapshot() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}
