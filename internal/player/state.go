// internal/player/state.go
package player

// State represents the low-level player state machine.
//
// Valid transitions:
//   - Stopped → Playing (via Load + Play)
//   - Playing → Paused  (via Pause)
//   - Playing → Stopped (via Stop)
//   - Paused  → Playing (via Play)
//   - Paused  → Stopped (via Stop)
//
// Invalid transitions are no-ops.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
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
