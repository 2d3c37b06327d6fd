// Package playlist provides the playback queue and history.
package playlist

import "time"

// Track represents a single track in the queue.
type Track struct {
	ID       string
	Title    string
	Composer string
	AudioURL string
	Duration time.Duration
	// OfflineCapable marks a source that is locally available
	// regardless of the download cache (e.g. a bundled file).
	OfflineCapable bool
}

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}
