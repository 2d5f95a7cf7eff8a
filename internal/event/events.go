package event

import "time"

// Type identifies a category of player event.
type Type string

const (
	StateChanged    Type = "state_changed"
	SourceChanged   Type = "source_changed"
	TrackChanged    Type = "track_changed"
	PositionChanged Type = "position_changed"
	VolumeChanged   Type = "volume_changed"
)

// StateChange is published when the player state changes.
type StateChange struct {
	Previous string
	New      string
	Source   string
}

// SourceChange is published exactly once per successful source switch.
type SourceChange struct {
	Previous string
	New      string
}

// TrackChange is published when playback moves to a different track.
type TrackChange struct {
	Previous string
	New      string
}

// PositionChange is published when the playback position is refreshed.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// VolumeChange is published when the volume level changes.
type VolumeChange struct {
	Previous float64
	New      float64
}

// Event pairs a type with its payload.
type Event struct {
	Type Type
	Data any
}

// Handler receives events for a subscribed type.
type Handler func(Event)
