package downloads

import (
	"github.com/dustin/go-humanize"

	"github.com/tlemaire/hymnbox/internal/cache"
	"github.com/tlemaire/hymnbox/internal/store"
)

// Stats aggregates the cache state for display.
type Stats struct {
	Downloading int
	Completed   int
	Errored     int
	Paused      int
	TotalBytes  int64 // size of completed downloads
	Usage       cache.Usage
}

// TotalSize returns the completed download volume as a human-readable
// string.
func (s Stats) TotalSize() string {
	return humanize.Bytes(uint64(s.TotalBytes))
}

// Stats computes per-status counts, total completed bytes and storage
// usage from the quota collaborator. Capacity is informational only and
// never enforced.
func (m *Manager) Stats() (Stats, error) {
	m.mu.RLock()
	var stats Stats
	for _, r := range m.records {
		switch r.Status {
		case store.StatusDownloading:
			stats.Downloading++
		case store.StatusCompleted:
			stats.Completed++
			stats.TotalBytes += r.Hymn.FileSize
		case store.StatusError:
			stats.Errored++
		case store.StatusPaused:
			stats.Paused++
		}
	}
	m.mu.RUnlock()

	usage, err := m.cache.Estimate()
	if err != nil {
		return stats, err
	}
	stats.Usage = usage
	return stats, nil
}
