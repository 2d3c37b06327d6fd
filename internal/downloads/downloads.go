// Package downloads orchestrates the offline cache lifecycle: it owns
// the in-memory projection of download records, drives the cache
// collaborator and keeps the persistent store authoritative.
package downloads

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tlemaire/hymnbox/internal/cache"
	"github.com/tlemaire/hymnbox/internal/hymn"
	"github.com/tlemaire/hymnbox/internal/store"
)

// Manager coordinates hymn downloads.
//
// Record status transitions: downloading -> {completed, error, paused};
// paused and error recover only through an explicit Resume/Download.
// Completed is terminal.
type Manager struct {
	mu      sync.RWMutex
	records map[string]store.Record

	store      *store.Store
	cache      cache.Collaborator
	logger     *log.Logger
	onProgress func(cache.Progress)
}

// Options configures a Manager.
type Options struct {
	Store  *store.Store
	Cache  cache.Collaborator
	Logger *log.Logger
	// OnProgress receives transfer progress for records in the
	// downloading state.
	OnProgress func(cache.Progress)
}

// NewManager creates a Manager and hydrates its in-memory state from the
// persistent store.
func NewManager(opts Options) (*Manager, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}

	m := &Manager{
		records:    make(map[string]store.Record),
		store:      opts.Store,
		cache:      opts.Cache,
		logger:     opts.Logger.With("component", "downloads"),
		onProgress: opts.OnProgress,
	}

	records, err := opts.Store.AllRecords()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		m.records[r.Hymn.ID] = r
	}
	return m, nil
}

// Download fetches a hymn into the offline cache. A hymn that is already
// completed returns immediately without any I/O. Any failure is captured
// on the record (status=error) and returned; the record is retained for
// inspection and retry.
func (m *Manager) Download(ctx context.Context, h hymn.Hymn) error {
	m.mu.Lock()
	if r, ok := m.records[h.ID]; ok && r.Status == store.StatusCompleted {
		m.mu.Unlock()
		return nil
	}

	rec := store.Record{
		Hymn:         h,
		DownloadedAt: time.Now(),
		Progress:     0,
		Status:       store.StatusDownloading,
	}
	m.records[h.ID] = rec
	m.mu.Unlock()

	if err := m.store.PutRecord(rec); err != nil {
		return m.fail(h.ID, err)
	}

	path, err := m.cache.Download(ctx, h)
	if err != nil {
		return m.fail(h.ID, err)
	}

	// The transfer result is only authoritative while the record is
	// still downloading. A record paused or removed mid-transfer keeps
	// that state; the finished bytes are discarded.
	m.mu.Lock()
	cur, ok := m.records[h.ID]
	if !ok || cur.Status != store.StatusDownloading {
		m.mu.Unlock()
		m.logger.Info("discarding finished transfer", "hymn", h.ID)
		return nil
	}

	rec = cur
	rec.Status = store.StatusCompleted
	rec.Progress = 100
	rec.LocalPath = path
	rec.Error = ""
	rec.DownloadedAt = time.Now()

	// Durability first: completed is never visible before the write is
	// confirmed, so a crash cannot leave a phantom completed record.
	// The lock stays held across the write so Pause or Remove cannot
	// slip between the state check and the commit.
	if err := m.store.PutRecord(rec); err != nil {
		m.mu.Unlock()
		return m.fail(h.ID, err)
	}
	m.records[h.ID] = rec
	m.mu.Unlock()

	m.logger.Info("download completed", "hymn", h.ID, "title", h.Title)
	return nil
}

// fail marks a record as errored with the captured message. The record
// is kept, not deleted. A record no longer downloading (paused or
// removed mid-transfer) keeps its state; the failure is only logged.
func (m *Manager) fail(hymnID string, cause error) error {
	m.mu.Lock()
	rec, ok := m.records[hymnID]
	if !ok || rec.Status != store.StatusDownloading {
		m.mu.Unlock()
		m.logger.Warn("ignoring failed transfer", "hymn", hymnID, "err", cause)
		return cause
	}

	rec.Status = store.StatusError
	rec.Error = cause.Error()
	if err := m.store.PutRecord(rec); err != nil {
		m.logger.Error("persist error record", "hymn", hymnID, "err", err)
	}
	m.records[hymnID] = rec
	m.mu.Unlock()

	m.logger.Error("download failed", "hymn", hymnID, "err", cause)
	return cause
}

// HandleProgress applies a transfer progress event to the matching
// record. Events for records no longer downloading are dropped.
func (m *Manager) HandleProgress(p cache.Progress) {
	m.mu.Lock()
	rec, ok := m.records[p.HymnID]
	if ok && rec.Status == store.StatusDownloading {
		rec.Progress = p.Percent
		m.records[p.HymnID] = rec
	} else {
		ok = false
	}
	m.mu.Unlock()

	if ok && m.onProgress != nil {
		m.onProgress(p)
	}
}

// Pause flips a downloading record to paused. The underlying transfer is
// not aborted; only the status changes. Returns false for any other
// state.
func (m *Manager) Pause(hymnID string) bool {
	m.mu.Lock()
	rec, ok := m.records[hymnID]
	if !ok || rec.Status != store.StatusDownloading {
		m.mu.Unlock()
		return false
	}
	rec.Status = store.StatusPaused
	m.records[hymnID] = rec
	m.mu.Unlock()

	if err := m.store.PutRecord(rec); err != nil {
		m.logger.Error("persist paused record", "hymn", hymnID, "err", err)
	}
	return true
}

// Resume restarts a paused download. The transfer starts over from zero;
// there is no byte-range resume.
func (m *Manager) Resume(ctx context.Context, hymnID string) error {
	m.mu.RLock()
	rec, ok := m.records[hymnID]
	m.mu.RUnlock()

	if !ok || rec.Status != store.StatusPaused {
		return nil
	}
	return m.Download(ctx, rec.Hymn)
}

// Remove purges a hymn from the cache and deletes its record. The cache
// purge is best effort; the result reflects only whether the persistent
// deletion succeeded.
func (m *Manager) Remove(ctx context.Context, hymnID string) bool {
	if err := m.cache.Delete(ctx, hymnID); err != nil {
		m.logger.Warn("cache purge failed", "hymn", hymnID, "err", err)
	}

	if err := m.store.DeleteRecord(hymnID); err != nil {
		m.logger.Error("delete record", "hymn", hymnID, "err", err)
		return false
	}

	m.mu.Lock()
	delete(m.records, hymnID)
	m.mu.Unlock()
	return true
}

// ClearAll purges the whole cache namespace and resets all state.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.cache.Clear(ctx); err != nil {
		return err
	}
	if err := m.store.ClearRecords(); err != nil {
		return err
	}

	m.mu.Lock()
	m.records = make(map[string]store.Record)
	m.mu.Unlock()

	m.logger.Info("cleared all downloads")
	return nil
}

// IsDownloaded reports whether a hymn is fully cached.
func (m *Manager) IsDownloaded(hymnID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[hymnID]
	return ok && rec.Status == store.StatusCompleted
}

// Get returns the completed record for a hymn, or nil if the hymn is not
// fully cached.
func (m *Manager) Get(hymnID string) *store.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[hymnID]
	if !ok || rec.Status != store.StatusCompleted {
		return nil
	}
	return &rec
}

// Record returns the record for a hymn in any state, or nil.
func (m *Manager) Record(hymnID string) *store.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[hymnID]
	if !ok {
		return nil
	}
	return &rec
}

// Records returns all records, in no particular order.
func (m *Manager) Records() []store.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]store.Record, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	return records
}
