// Package pending queues side-effecting user actions while disconnected
// and replays them to the backend with bounded retries on reconnect.
package pending

import "time"

// ActionType identifies the backend sink an action is delivered to.
type ActionType string

const (
	ActionPlayCount   ActionType = "play_count"
	ActionLike        ActionType = "like"
	ActionPlaylistAdd ActionType = "playlist_add"
	ActionRating      ActionType = "rating"
	ActionComment     ActionType = "comment"
)

// PlayCountPayload reports one playback.
type PlayCountPayload struct {
	HymnID    string    `json:"hymnId"`
	Timestamp time.Time `json:"timestamp"`
}

// LikePayload records or removes a like.
type LikePayload struct {
	HymnID string `json:"hymnId"`
	Liked  bool   `json:"liked"`
}

// PlaylistAddPayload appends a hymn to a playlist.
type PlaylistAddPayload struct {
	PlaylistID string `json:"playlistId"`
	HymnID     string `json:"hymnId"`
}

// RatingPayload submits a rating.
type RatingPayload struct {
	HymnID string `json:"hymnId"`
	Rating int    `json:"rating"`
}

// CommentPayload submits a comment.
type CommentPayload struct {
	HymnID  string `json:"hymnId"`
	Comment string `json:"comment"`
}

// Sink delivers actions to the backend. A nil error means the backend
// acknowledged the action; any error is a delivery failure regardless of
// cause.
type Sink interface {
	RecordPlay(hymnID string, playedAt time.Time) error
	SetLike(hymnID string, liked bool) error
	AddToPlaylist(playlistID, hymnID string) error
	Rate(hymnID string, rating int) error
	Comment(hymnID, comment string) error
}
