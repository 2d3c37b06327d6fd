package playback

import (
	"time"

	"github.com/tlemaire/hymnbox/internal/playlist"
)

// StateChange is emitted when the transport starts, pauses or stops.
type StateChange struct {
	Playing bool
	Loading bool
}

// TrackChange is emitted when playback moves to a different track.
//
// Emitted by:
//   - Play: when the requested track differs from the loaded one
//   - Next/Previous/JumpTo: when navigating with playback control
//   - the finished watcher: when a track ends and advances automatically
//
// NOT emitted by:
//   - Pause/Stop: state changes do not emit TrackChange
//   - Previous when it merely restarts the current track
type TrackChange struct {
	Previous *playlist.Track
	Current  *playlist.Track
	Index    int
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []playlist.Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	Repeat  playlist.RepeatMode
	Shuffle bool
}

// PositionChange is emitted when a seek occurs.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when a load or play operation fails.
type ErrorEvent struct {
	Operation string // e.g. "load", "next"
	TrackID   string
	Code      string
	Err       error
}
