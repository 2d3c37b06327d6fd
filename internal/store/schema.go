package store

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS download_records (
			hymn_id TEXT PRIMARY KEY,
			number INTEGER NOT NULL,
			title TEXT NOT NULL,
			composer TEXT NOT NULL,
			category TEXT NOT NULL,
			audio_url TEXT NOT NULL,
			cover_url TEXT,
			duration_ms INTEGER,
			file_size INTEGER,
			downloaded_at INTEGER NOT NULL,
			local_path TEXT,
			progress INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_downloaded_at ON download_records(downloaded_at);
		CREATE INDEX IF NOT EXISTS idx_records_category ON download_records(category);
		CREATE INDEX IF NOT EXISTS idx_records_status ON download_records(status);

		CREATE TABLE IF NOT EXISTS pending_actions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			action_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			retries INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add error_message column if missing
	_, _ = db.Exec(`ALTER TABLE download_records ADD COLUMN error_message TEXT`)

	return nil
}
