package store

import (
	"database/sql"
	"time"

	dbutil "github.com/tlemaire/hymnbox/internal/db"
)

// PendingAction is one durable queue entry awaiting backend delivery.
// Payload holds the action-specific JSON document.
type PendingAction struct {
	ID        string
	Type      string
	Payload   string
	CreatedAt time.Time
	Retries   int
}

// AppendAction adds an action to the end of the durable queue.
func (s *Store) AppendAction(a PendingAction) error {
	_, err := s.db.Exec(`
		INSERT INTO pending_actions (id, action_type, payload, created_at, retries)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Type, a.Payload, a.CreatedAt.Unix(), a.Retries)
	return err
}

// Actions returns the queue in enqueue order.
func (s *Store) Actions() ([]PendingAction, error) {
	rows, err := s.db.Query(`
		SELECT id, action_type, payload, created_at, retries
		FROM pending_actions
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []PendingAction
	for rows.Next() {
		var a PendingAction
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Type, &a.Payload, &createdAt, &a.Retries); err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ReplaceActions atomically replaces the whole persisted queue with the
// surviving entries of a drain cycle, preserving their order.
func (s *Store) ReplaceActions(actions []PendingAction) error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM pending_actions`); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO pending_actions (id, action_type, payload, created_at, retries)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range actions {
			if _, err := stmt.Exec(a.ID, a.Type, a.Payload, a.CreatedAt.Unix(), a.Retries); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteAction removes a single action by id.
func (s *Store) DeleteAction(id string) error {
	_, err := s.db.Exec(`DELETE FROM pending_actions WHERE id = ?`, id)
	return err
}

// ClearActions empties the queue.
func (s *Store) ClearActions() error {
	_, err := s.db.Exec(`DELETE FROM pending_actions`)
	return err
}
