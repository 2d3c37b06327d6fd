package playback

import (
	"time"

	"github.com/tlemaire/hymnbox/internal/playlist"
	"github.com/tlemaire/hymnbox/internal/store"
)

// SourceResolver looks up completed downloads for offline source
// substitution.
type SourceResolver interface {
	Get(hymnID string) *store.Record
}

// ConnectivityProbe reports current network reachability.
type ConnectivityProbe interface {
	Online() bool
}

// Service defines the playback engine contract.
type Service interface {
	// Transport control
	Load(track playlist.Track) error
	Play(track *playlist.Track) error
	Pause()
	Toggle() error
	Stop()
	Next() error
	Previous() error
	Seek(position time.Duration)

	// Output control
	SetVolume(level float64)
	ToggleMute() bool
	SetRate(rate float64)

	// Queue manipulation
	SetPlaylistTracks(tracks []playlist.Track, startIndex int) error
	AddToPlaylist(tracks ...playlist.Track)
	RemoveFromPlaylist(id string) bool
	JumpTo(index int) error
	ClearQueue()

	// Mode control
	SetShuffle(enabled bool)
	ToggleShuffle() bool
	SetRepeat(mode playlist.RepeatMode)
	CycleRepeat() playlist.RepeatMode

	// State queries
	State() PlayerState
	CurrentTrack() *playlist.Track
	QueueTracks() []playlist.Track
	QueueIndex() int
	History() []string

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
