// internal/player/interface.go
package player

import "time"

// Interface defines the player contract for dependency injection and testing.
//
// Load decodes a source (local file path or HTTP URL) and leaves it paused
// at position zero; Play starts or resumes output. Stop releases the current
// source and its resources.
type Interface interface {
	Load(source string) error
	Play()
	Pause()
	Stop()
	Seek(position time.Duration)
	Position() time.Duration
	Duration() time.Duration
	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	SetRate(rate float64)
	Rate() float64
	State() State
	FinishedChan() <-chan struct{}
	Close() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
