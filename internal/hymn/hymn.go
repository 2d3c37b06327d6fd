// Package hymn defines the hymn metadata shared across the cache,
// playback and sync subsystems.
package hymn

import "time"

// Hymn describes a playable asset eligible for offline caching.
type Hymn struct {
	ID       string
	Number   int
	Title    string
	Composer string
	Category string
	AudioURL string
	CoverURL string
	Duration time.Duration
	FileSize int64
}
