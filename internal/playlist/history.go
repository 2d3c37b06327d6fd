package playlist

// History keeps the most recently played track ids, newest first,
// de-duplicated and capped.
type History struct {
	ids     []string
	maxSize int
}

// NewHistory creates a history with the given maximum size.
func NewHistory(maxSize int) *History {
	return &History{maxSize: maxSize}
}

// Push front-inserts a track id. An id already present moves to the
// front instead of repeating; the oldest entry falls off past the cap.
func (h *History) Push(id string) {
	for i, existing := range h.ids {
		if existing == id {
			h.ids = append(h.ids[:i], h.ids[i+1:]...)
			break
		}
	}

	h.ids = append([]string{id}, h.ids...)
	if len(h.ids) > h.maxSize {
		h.ids = h.ids[:h.maxSize]
	}
}

// IDs returns a copy of the history, newest first.
func (h *History) IDs() []string {
	return append([]string(nil), h.ids...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.ids)
}
