package player

// State represents the player state machine.
//
// Valid transitions:
//   - Stopped → Playing (via Play)
//   - Playing → Paused  (via Pause)
//   - Playing → Stopped (via Stop)
//   - Paused  → Playing (via Play, resumes)
//   - Paused  → Stopped (via Stop)
//
// Invalid/no-op transitions (handled gracefully):
//   - Stopped → Paused  (rejected with an error, no transition)
//   - Playing → Playing (Play is a no-op)
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name as carried in event payloads.
func (s State) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Playing:
		return "PLAYING"
	case Paused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}
