// internal/playback/service_impl.go
package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tlemaire/hymnbox/internal/player"
	"github.com/tlemaire/hymnbox/internal/playlist"
)

// previousThreshold is the playback position past which Previous restarts
// the current track instead of moving to the prior one.
const previousThreshold = 3 * time.Second

const historySize = 50

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	mu sync.RWMutex

	player   player.Interface
	queue    *playlist.Queue
	history  *playlist.History
	resolver SourceResolver
	net      ConnectivityProbe
	logger   *log.Logger

	current *playlist.Track
	loading bool
	errCode string

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// Options configures the playback service.
type Options struct {
	Player   player.Interface
	Resolver SourceResolver
	Net      ConnectivityProbe
	Logger   *log.Logger
}

// New creates a playback service and starts watching for track completion.
func New(opts Options) Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &serviceImpl{
		player:   opts.Player,
		queue:    playlist.NewQueue(),
		history:  playlist.NewHistory(historySize),
		resolver: opts.Resolver,
		net:      opts.Net,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go s.watchFinished()
	return s
}

// watchFinished advances the queue when a track plays to completion.
func (s *serviceImpl) watchFinished() {
	for {
		select {
		case <-s.done:
			return
		case <-s.player.FinishedChan():
			if err := s.Next(); err != nil {
				s.logger.Warn("auto-advance failed", "err", err)
			}
		}
	}
}

// Load resolves the track's source and loads it paused at position zero.
// The previous source is always fully stopped first. The track id is
// front-inserted into the listening history.
func (s *serviceImpl) Load(track playlist.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(track)
}

func (s *serviceImpl) loadLocked(track playlist.Track) error {
	source, err := s.resolveSource(track)
	if err != nil {
		s.failLoad("load", track.ID, err)
		return err
	}

	s.player.Stop()
	s.loading = true
	s.emitState()

	prev := s.current
	if err := s.player.Load(source); err != nil {
		s.loading = false
		s.failLoad("load", track.ID, err)
		return fmt.Errorf("load track %s: %w", track.ID, err)
	}

	s.loading = false
	s.errCode = ""
	loaded := track
	s.current = &loaded
	s.history.Push(track.ID)
	s.logger.Debug("track loaded", "id", track.ID, "source", source)

	s.emitTrack(TrackChange{Previous: prev, Current: &loaded, Index: s.queue.CurrentIndex()})
	s.emitState()
	return nil
}

// resolveSource picks the playback source for a track. Offline, a track
// that is not self-declared offline-capable must have a completed download.
func (s *serviceImpl) resolveSource(track playlist.Track) (string, error) {
	if s.net.Online() || track.OfflineCapable {
		return track.AudioURL, nil
	}

	rec := s.resolver.Get(track.ID)
	if rec == nil || rec.LocalPath == "" {
		return "", fmt.Errorf("track %s: %w", track.ID, ErrUnavailableOffline)
	}
	return rec.LocalPath, nil
}

func (s *serviceImpl) failLoad(op, trackID string, err error) {
	s.errCode = classifyErr(err)
	s.logger.Error("playback failure", "op", op, "id", trackID, "code", s.errCode, "err", err)
	s.emitError(ErrorEvent{Operation: op, TrackID: trackID, Code: s.errCode, Err: err})
	s.emitState()
}

// Play resumes the current source, or loads and plays the given track.
func (s *serviceImpl) Play(track *playlist.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if track != nil {
		if s.current == nil || s.current.ID != track.ID || s.player.State() == player.Stopped {
			if err := s.loadLocked(*track); err != nil {
				return err
			}
		}
	} else if s.player.State() == player.Stopped {
		cur := s.current
		if cur == nil {
			cur = s.queue.Current()
		}
		if cur == nil {
			return nil
		}
		if err := s.loadLocked(*cur); err != nil {
			return err
		}
	}

	s.player.Play()
	s.emitState()
	return nil
}

// Pause pauses playback. Idempotent.
func (s *serviceImpl) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Pause()
	s.emitState()
}

// Toggle flips between playing and paused.
func (s *serviceImpl) Toggle() error {
	s.mu.Lock()
	playing := s.player.State() == player.Playing
	s.mu.Unlock()

	if playing {
		s.Pause()
		return nil
	}
	return s.Play(nil)
}

// Stop halts playback and unloads the current source.
func (s *serviceImpl) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Stop()
	s.emitState()
}

// Next advances the queue according to shuffle and repeat modes. When the
// queue is exhausted and repeat is off, playback stops without wrapping.
func (s *serviceImpl) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(s.queue.Next(), "next")
}

// Previous restarts the current track when more than 3 seconds in,
// otherwise moves to the prior track.
func (s *serviceImpl) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player.Position() > previousThreshold {
		s.player.Seek(0)
		s.emitPosition(0)
		return nil
	}
	return s.advanceLocked(s.queue.Previous(), "previous")
}

// JumpTo starts playback at the given queue index.
func (s *serviceImpl) JumpTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(s.queue.JumpTo(index), "jump")
}

func (s *serviceImpl) advanceLocked(track *playlist.Track, op string) error {
	if track == nil {
		s.player.Stop()
		s.emitState()
		return nil
	}
	if err := s.loadLocked(*track); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.player.Play()
	s.emitState()
	return nil
}

// Seek moves to an absolute position, clamped to [0, duration].
func (s *serviceImpl) Seek(position time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 {
		position = 0
	}
	if d := s.player.Duration(); position > d {
		position = d
	}
	s.player.Seek(position)
	s.emitPosition(position)
}

// SetVolume sets the output level, clamped to [0, 1].
func (s *serviceImpl) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	s.player.SetVolume(level)
	s.emitState()
}

// ToggleMute flips the mute flag without changing the volume level.
// Returns the new muted state.
func (s *serviceImpl) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	muted := !s.player.Muted()
	s.player.SetMuted(muted)
	s.emitState()
	return muted
}

// SetRate sets the playback rate, clamped to [0.5, 2.0].
func (s *serviceImpl) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rate < 0.5 {
		rate = 0.5
	}
	if rate > 2.0 {
		rate = 2.0
	}
	s.player.SetRate(rate)
	s.emitState()
}

// SetPlaylistTracks replaces the queue and starts playback at startIndex
// if it is in range.
func (s *serviceImpl) SetPlaylistTracks(tracks []playlist.Track, startIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.queue.Replace(tracks, startIndex)
	s.emitQueue()
	if start == nil {
		return nil
	}
	return s.advanceLocked(start, "play")
}

// AddToPlaylist appends tracks to the queue without affecting playback.
func (s *serviceImpl) AddToPlaylist(tracks ...playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Add(tracks...)
	s.emitQueue()
}

// RemoveFromPlaylist removes a track by id. If the removed entry was
// playing, playback continues at whatever now occupies that index, or
// stops if the queue became empty. Returns whether a track was removed.
func (s *serviceImpl) RemoveFromPlaylist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentChanged, removed := s.queue.RemoveByID(id)
	if !removed {
		return false
	}
	s.emitQueue()

	if currentChanged {
		if err := s.advanceLocked(s.queue.Current(), "remove"); err != nil {
			s.logger.Warn("continue after removal failed", "id", id, "err", err)
		}
	}
	return true
}

// ClearQueue empties the queue and stops playback.
func (s *serviceImpl) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Clear()
	s.current = nil
	s.player.Stop()
	s.emitQueue()
	s.emitState()
}

// SetShuffle enables or disables shuffle.
func (s *serviceImpl) SetShuffle(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetShuffle(enabled)
	s.emitMode()
}

// ToggleShuffle flips shuffle and returns the new state.
func (s *serviceImpl) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	enabled := !s.queue.Shuffle()
	s.queue.SetShuffle(enabled)
	s.emitMode()
	return enabled
}

// SetRepeat sets the repeat mode.
func (s *serviceImpl) SetRepeat(mode playlist.RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetRepeat(mode)
	s.emitMode()
}

// CycleRepeat advances off → all → one → off and returns the new mode.
func (s *serviceImpl) CycleRepeat() playlist.RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next playlist.RepeatMode
	switch s.queue.Repeat() {
	case playlist.RepeatOff:
		next = playlist.RepeatAll
	case playlist.RepeatAll:
		next = playlist.RepeatOne
	default:
		next = playlist.RepeatOff
	}
	s.queue.SetRepeat(next)
	s.emitMode()
	return next
}

// State returns a snapshot of the transport.
func (s *serviceImpl) State() PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return PlayerState{
		Current:  s.current,
		Playing:  s.player.State() == player.Playing,
		Loading:  s.loading,
		Position: s.player.Position(),
		Duration: s.player.Duration(),
		Volume:   s.player.Volume(),
		Muted:    s.player.Muted(),
		Rate:     s.player.Rate(),
		Err:      s.errCode,
		Shuffle:  s.queue.Shuffle(),
		Repeat:   s.queue.Repeat(),
	}
}

// CurrentTrack returns the loaded track, or nil.
func (s *serviceImpl) CurrentTrack() *playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// QueueTracks returns a copy of the queue contents.
func (s *serviceImpl) QueueTracks() []playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Tracks()
}

// QueueIndex returns the current queue index, or -1.
func (s *serviceImpl) QueueIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.CurrentIndex()
}

// History returns recently played track ids, most recent first.
func (s *serviceImpl) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.IDs()
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close stops playback and shuts the service down.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.player.Stop()
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return s.player.Close()
}

// Event emission helpers. Callers hold s.mu.

func (s *serviceImpl) emitState() {
	e := StateChange{Playing: s.player.State() == player.Playing, Loading: s.loading}
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendState(e)
	}
}

func (s *serviceImpl) emitTrack(e TrackChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendTrack(e)
	}
}

func (s *serviceImpl) emitPosition(pos time.Duration) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendPosition(pos)
	}
}

func (s *serviceImpl) emitQueue() {
	e := QueueChange{Tracks: s.queue.Tracks(), Index: s.queue.CurrentIndex()}
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendQueue(e)
	}
}

func (s *serviceImpl) emitMode() {
	e := ModeChange{Repeat: s.queue.Repeat(), Shuffle: s.queue.Shuffle()}
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendMode(e)
	}
}

func (s *serviceImpl) emitError(e ErrorEvent) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendError(e)
	}
}
