package store

import (
	"database/sql"
	"time"

	dbutil "github.com/tlemaire/hymnbox/internal/db"
	"github.com/tlemaire/hymnbox/internal/hymn"
)

// Status constants for download record states.
const (
	StatusDownloading = "downloading"
	StatusCompleted   = "completed"
	StatusError       = "error"
	StatusPaused      = "paused"
)

// Record is the persisted cache-lifecycle state for one hymn.
// At most one record exists per hymn id.
type Record struct {
	Hymn         hymn.Hymn
	DownloadedAt time.Time
	LocalPath    string
	Progress     int // 0-100
	Status       string
	Error        string
}

const recordColumns = `hymn_id, number, title, composer, category, audio_url, cover_url,
		       duration_ms, file_size, downloaded_at, local_path, progress, status, error_message`

// PutRecord upserts a record. The write is committed before it returns,
// so callers may treat a nil error as durable.
func (s *Store) PutRecord(r Record) error {
	_, err := s.db.Exec(`
		INSERT INTO download_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hymn_id) DO UPDATE SET
			number = excluded.number,
			title = excluded.title,
			composer = excluded.composer,
			category = excluded.category,
			audio_url = excluded.audio_url,
			cover_url = excluded.cover_url,
			duration_ms = excluded.duration_ms,
			file_size = excluded.file_size,
			downloaded_at = excluded.downloaded_at,
			local_path = excluded.local_path,
			progress = excluded.progress,
			status = excluded.status,
			error_message = excluded.error_message
	`, r.Hymn.ID, r.Hymn.Number, r.Hymn.Title, r.Hymn.Composer, r.Hymn.Category,
		r.Hymn.AudioURL, r.Hymn.CoverURL, r.Hymn.Duration.Milliseconds(), r.Hymn.FileSize,
		r.DownloadedAt.Unix(), r.LocalPath, r.Progress, r.Status, r.Error)
	return err
}

// GetRecord returns the record for a hymn id, or nil if none exists.
func (s *Store) GetRecord(hymnID string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT `+recordColumns+`
		FROM download_records
		WHERE hymn_id = ?
	`, hymnID)

	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// AllRecords returns every record ordered by download time (newest first).
// Used to hydrate in-memory state at startup.
func (s *Store) AllRecords() ([]Record, error) {
	return s.queryRecords(`
		SELECT ` + recordColumns + `
		FROM download_records
		ORDER BY downloaded_at DESC
	`)
}

// RecordsByCategory returns records for one category, newest first.
func (s *Store) RecordsByCategory(category string) ([]Record, error) {
	return s.queryRecords(`
		SELECT `+recordColumns+`
		FROM download_records
		WHERE category = ?
		ORDER BY downloaded_at DESC
	`, category)
}

// RecordsByStatus returns records in one status, newest first.
func (s *Store) RecordsByStatus(status string) ([]Record, error) {
	return s.queryRecords(`
		SELECT `+recordColumns+`
		FROM download_records
		WHERE status = ?
		ORDER BY downloaded_at DESC
	`, status)
}

// DeleteRecord removes the record for a hymn id.
func (s *Store) DeleteRecord(hymnID string) error {
	_, err := s.db.Exec(`DELETE FROM download_records WHERE hymn_id = ?`, hymnID)
	return err
}

// ClearRecords removes all records.
func (s *Store) ClearRecords() error {
	_, err := s.db.Exec(`DELETE FROM download_records`)
	return err
}

func (s *Store) queryRecords(query string, args ...any) ([]Record, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	var coverURL, localPath, errorMessage sql.NullString
	var durationMS, fileSize sql.NullInt64
	var downloadedAt int64

	err := row.Scan(
		&r.Hymn.ID, &r.Hymn.Number, &r.Hymn.Title, &r.Hymn.Composer, &r.Hymn.Category,
		&r.Hymn.AudioURL, &coverURL, &durationMS, &fileSize,
		&downloadedAt, &localPath, &r.Progress, &r.Status, &errorMessage,
	)
	if err != nil {
		return nil, err
	}

	r.Hymn.CoverURL = dbutil.NullStringValue(coverURL)
	r.Hymn.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
	r.Hymn.FileSize = dbutil.NullInt64Value(fileSize)
	r.DownloadedAt = time.Unix(downloadedAt, 0)
	r.LocalPath = dbutil.NullStringValue(localPath)
	r.Error = dbutil.NullStringValue(errorMessage)
	return &r, nil
}
