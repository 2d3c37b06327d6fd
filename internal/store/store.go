// Package store provides the durable registry backing the download
// manager and the pending-action sync engine.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "hymnbox"
	dbFileName = "hymnbox.db"
)

// Store wraps the sqlite database holding download records and the
// pending-action queue.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at the xdg data path.
func Open() (*Store, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens (or creates) the database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}
