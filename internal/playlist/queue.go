package playlist

import "math/rand/v2"

// Queue holds the ordered track list with playback position, shuffle
// and repeat state. currentIndex always points into the track list or
// is -1 when nothing is selected.
type Queue struct {
	tracks       []Track
	currentIndex int
	shuffle      bool
	repeat       RepeatMode
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{currentIndex: -1}
}

// Current returns the currently selected track, or nil if none.
func (q *Queue) Current() *Track {
	if q.currentIndex < 0 || q.currentIndex >= len(q.tracks) {
		return nil
	}
	return &q.tracks[q.currentIndex]
}

// CurrentIndex returns the index of the selected track (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Replace swaps in a new track list. If startIndex is in range the
// selection moves there and the selected track is returned; otherwise
// the selection is cleared.
func (q *Queue) Replace(tracks []Track, startIndex int) *Track {
	q.tracks = append([]Track(nil), tracks...)
	if startIndex < 0 || startIndex >= len(q.tracks) {
		q.currentIndex = -1
		return nil
	}
	q.currentIndex = startIndex
	return q.Current()
}

// Add appends tracks without changing the selection.
func (q *Queue) Add(tracks ...Track) {
	q.tracks = append(q.tracks, tracks...)
}

// RemoveByID removes the first track with the given id.
//
// If the removed track was selected the selection stays at the same
// index, which now holds the next track (clamped to the new end, or -1
// on an empty queue) - currentChanged reports that the selected track is
// a different one. Removing a track before the selection shifts the
// index down so it keeps pointing at the same logical track.
func (q *Queue) RemoveByID(id string) (currentChanged, removed bool) {
	index := -1
	for i, t := range q.tracks {
		if t.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false, false
	}

	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)

	switch {
	case q.currentIndex > index:
		q.currentIndex--
	case q.currentIndex == index:
		if q.currentIndex >= len(q.tracks) {
			q.currentIndex = len(q.tracks) - 1
		}
		currentChanged = true
	}
	return currentChanged, true
}

// Clear removes all tracks and resets the selection.
func (q *Queue) Clear() {
	q.tracks = nil
	q.currentIndex = -1
}

// Next advances the selection and returns the new track, or nil when
// playback should stop (end of queue without repeat-all).
//
// Repeat-one replays the current index. Shuffle picks uniformly among
// the other indices, falling back to index 0 on a single-track queue.
// Sequential mode wraps to 0 only under repeat-all.
func (q *Queue) Next() *Track {
	if len(q.tracks) == 0 || q.currentIndex < 0 {
		return nil
	}

	if q.repeat == RepeatOne {
		return q.Current()
	}

	if q.shuffle {
		q.currentIndex = q.randomOther()
		return q.Current()
	}

	if q.currentIndex < len(q.tracks)-1 {
		q.currentIndex++
		return q.Current()
	}
	if q.repeat == RepeatAll {
		q.currentIndex = 0
		return q.Current()
	}
	// End of queue: selection stays put, playback stops.
	return nil
}

// Previous moves the selection back and returns the new track. At index
// 0 it wraps to the last index only under repeat-all, otherwise the
// selection stays at 0.
func (q *Queue) Previous() *Track {
	if len(q.tracks) == 0 || q.currentIndex < 0 {
		return nil
	}

	if q.currentIndex > 0 {
		q.currentIndex--
	} else if q.repeat == RepeatAll {
		q.currentIndex = len(q.tracks) - 1
	}
	return q.Current()
}

// randomOther returns a uniformly random index different from the
// current one, or 0 for a single-track queue.
func (q *Queue) randomOther() int {
	if len(q.tracks) == 1 {
		return 0
	}
	n := rand.IntN(len(q.tracks) - 1)
	if n >= q.currentIndex {
		n++
	}
	return n
}

// JumpTo sets the selection to the specified position. Returns the
// track at that position, or nil if invalid.
func (q *Queue) JumpTo(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Tracks returns a copy of all tracks in the queue.
func (q *Queue) Tracks() []Track {
	result := make([]Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Shuffle returns whether shuffle is enabled.
func (q *Queue) Shuffle() bool {
	return q.shuffle
}

// SetShuffle enables or disables shuffle.
func (q *Queue) SetShuffle(enabled bool) {
	q.shuffle = enabled
}

// Repeat returns the current repeat mode.
func (q *Queue) Repeat() RepeatMode {
	return q.repeat
}

// SetRepeat sets the repeat mode.
func (q *Queue) SetRepeat(mode RepeatMode) {
	q.repeat = mode
}
