package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"
)

// SetVolume sets the volume level (0.0 to 1.0).
// If muted, only stores the level without applying it.
func (p *Player) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	p.volumeLevel = level

	if p.volume != nil {
		speaker.Lock()
		p.volume.Volume = levelToVolume(level)
		p.volume.Silent = p.muted || level <= 0
		speaker.Unlock()
	}
}

// Volume returns the current volume level (0.0 to 1.0).
func (p *Player) Volume() float64 {
	return p.volumeLevel
}

// SetMuted sets the muted state without touching the stored volume level.
func (p *Player) SetMuted(muted bool) {
	p.muted = muted

	if p.volume != nil {
		speaker.Lock()
		p.volume.Silent = muted || p.volumeLevel <= 0
		speaker.Unlock()
	}
}

// Muted returns true if audio is muted.
func (p *Player) Muted() bool {
	return p.muted
}

// SetRate sets the playback rate, clamped to [0.5, 2.0].
func (p *Player) SetRate(rate float64) {
	if rate < 0.5 {
		rate = 0.5
	}
	if rate > 2.0 {
		rate = 2.0
	}

	p.rate = rate

	if p.resampler != nil {
		speaker.Lock()
		p.resampler.SetRatio(p.baseRatio() * rate)
		speaker.Unlock()
	}
}

// Rate returns the current playback rate.
func (p *Player) Rate() float64 {
	return p.rate
}

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale with base 2 where 0 means no change,
// -1 half volume, -2 quarter volume. A level of 0 is handled by Silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
