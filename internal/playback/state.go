// internal/playback/state.go
package playback

import (
	"time"

	"github.com/tlemaire/hymnbox/internal/playlist"
)

// PlayerState is a snapshot of the full transport state, suitable for
// rendering or inspection. It is a copy; mutating it has no effect.
type PlayerState struct {
	Current  *playlist.Track
	Playing  bool
	Loading  bool
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Muted    bool
	Rate     float64
	Err      string
	Shuffle  bool
	Repeat   playlist.RepeatMode
}

// IsActive returns true if a track is loaded (playing or paused).
func (s PlayerState) IsActive() bool {
	return s.Current != nil
}
