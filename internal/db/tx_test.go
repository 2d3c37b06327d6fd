package db

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return conn
}

func countItems(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestWithTx_Commit(t *testing.T) {
	conn := openTestDB(t)

	err := WithTx(conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (name) VALUES (?)`, "a")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if got := countItems(t, conn); got != 1 {
		t.Errorf("items = %d, want 1", got)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	conn := openTestDB(t)
	wantErr := errors.New("abort")

	err := WithTx(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (name) VALUES (?)`, "a"); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithTx error = %v, want %v", err, wantErr)
	}
	if got := countItems(t, conn); got != 0 {
		t.Errorf("items = %d, want 0 after rollback", got)
	}
}

func TestNullStringValue(t *testing.T) {
	if got := NullStringValue(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Errorf("NullStringValue(valid) = %q, want x", got)
	}
	if got := NullStringValue(sql.NullString{}); got != "" {
		t.Errorf("NullStringValue(invalid) = %q, want empty", got)
	}
}

func TestNullInt64Value(t *testing.T) {
	if got := NullInt64Value(sql.NullInt64{Int64: 7, Valid: true}); got != 7 {
		t.Errorf("NullInt64Value(valid) = %d, want 7", got)
	}
	if got := NullInt64Value(sql.NullInt64{}); got != 0 {
		t.Errorf("NullInt64Value(invalid) = %d, want 0", got)
	}
}
