package player

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// outputRate is the fixed speaker sample rate. Every decoded stream is
// resampled to it, so the speaker is initialized exactly once.
const outputRate beep.SampleRate = 44100

const resampleQuality = 4

// Player plays a single audio source through the system speaker.
type Player struct {
	state     State
	streamer  beep.StreamSeekCloser
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	volume    *effects.Volume
	format    beep.Format
	source    io.Closer

	volumeLevel float64
	muted       bool
	rate        float64

	finishedCh chan struct{}
}

var speakerInitialized bool

// New creates a stopped player with full volume and normal rate.
func New() *Player {
	return &Player{
		state:       Stopped,
		volumeLevel: 1.0,
		rate:        1.0,
		finishedCh:  make(chan struct{}, 1),
	}
}

// Load decodes the given source and leaves it paused at position zero.
// The source is either a local file path or an HTTP(S) URL. Any previously
// loaded source is stopped first.
func (p *Player) Load(source string) error {
	p.Stop()

	rc, err := openSource(source)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		rc.Close()
		return fmt.Errorf("decode %s: %w", source, err)
	}

	if !speakerInitialized {
		if err := speaker.Init(outputRate, outputRate.N(time.Second/10)); err != nil {
			streamer.Close()
			rc.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		speakerInitialized = true
	}

	p.source = rc
	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	p.resampler = beep.ResampleRatio(resampleQuality, p.baseRatio()*p.rate, p.ctrl)
	p.volume = &effects.Volume{
		Streamer: p.resampler,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.muted || p.volumeLevel <= 0,
	}
	p.state = Paused

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
	})))

	return nil
}

// baseRatio converts the source sample rate to the speaker rate. The
// playback rate multiplies on top of it.
func (p *Player) baseRatio() float64 {
	return float64(p.format.SampleRate) / float64(outputRate)
}

// Stop releases the current source and returns the player to Stopped.
func (p *Player) Stop() {
	if p.state == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.source != nil {
		p.source.Close()
		p.source = nil
	}

	p.ctrl = nil
	p.resampler = nil
	p.volume = nil
	p.state = Stopped
}

// State returns the current player state.
func (p *Player) State() State { return p.state }

// Duration returns the length of the loaded source, or zero when stopped.
func (p *Player) Duration() time.Duration {
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// FinishedChan signals once each time a source plays to completion.
func (p *Player) FinishedChan() <-chan struct{} {
	return p.finishedCh
}

// Close stops playback and shuts the speaker down.
func (p *Player) Close() error {
	p.Stop()
	if speakerInitialized {
		speaker.Close()
		speakerInitialized = false
	}
	return nil
}

func openSource(source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("open stream: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("open stream: unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}
