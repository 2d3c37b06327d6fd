// internal/player/mock.go
package player

import "time"

// Mock is a test double for Player.
type Mock struct {
	state       State
	position    time.Duration
	duration    time.Duration
	volumeLevel float64
	muted       bool
	rate        float64
	loadErr     error

	LoadCalls []string
	SeekCalls []time.Duration
	StopCalls int

	finishedCh chan struct{}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:       Stopped,
		volumeLevel: 1.0,
		rate:        1.0,
		finishedCh:  make(chan struct{}, 1),
	}
}

func (m *Mock) Load(source string) error {
	m.LoadCalls = append(m.LoadCalls, source)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.state = Paused
	m.position = 0
	return nil
}

func (m *Mock) Play() {
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Pause() {
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Stop() {
	m.StopCalls++
	m.state = Stopped
	m.position = 0
}

func (m *Mock) Seek(position time.Duration) {
	m.SeekCalls = append(m.SeekCalls, position)
	m.position = position
}

func (m *Mock) Position() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) SetVolume(level float64) { m.volumeLevel = level }

func (m *Mock) Volume() float64 { return m.volumeLevel }

func (m *Mock) SetMuted(muted bool) { m.muted = muted }

func (m *Mock) Muted() bool { return m.muted }

func (m *Mock) SetRate(rate float64) { m.rate = rate }

func (m *Mock) Rate() float64 { return m.rate }

func (m *Mock) State() State { return m.state }

func (m *Mock) FinishedChan() <-chan struct{} { return m.finishedCh }

func (m *Mock) Close() error {
	m.state = Stopped
	return nil
}

// Test helpers

// SetPosition sets the reported position.
func (m *Mock) SetPosition(pos time.Duration) { m.position = pos }

// SetDuration sets the reported duration.
func (m *Mock) SetDuration(d time.Duration) { m.duration = d }

// SetLoadError makes subsequent Load calls fail with err.
func (m *Mock) SetLoadError(err error) { m.loadErr = err }

// EmitFinished signals track completion on the finished channel.
func (m *Mock) EmitFinished() {
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}
