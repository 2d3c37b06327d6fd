package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// Play starts or resumes output for the loaded source.
func (p *Player) Play() {
	if p.state != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// Pause pauses playback. The source stays loaded at its position.
func (p *Player) Pause() {
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	return pos
}

// Seek moves to an absolute position, clamped to the source length.
// Sources decoded from a non-seekable stream ignore seeks.
func (p *Player) Seek(position time.Duration) {
	if p.streamer == nil || p.state == Stopped {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()

	target := p.format.SampleRate.N(position)
	if target < 0 {
		target = 0
	}
	if maxPos := p.streamer.Len(); target > maxPos {
		target = maxPos
	}
	_ = p.streamer.Seek(target)
}
