package db

import (
	"fmt"
	"time"
)

// HistoryEntry is one finished install operation.
type HistoryEntry struct {
	ID         int64
	Operation  string
	Target     string
	State      string
	Error      string
	FinishedAt time.Time
}

// RecordInstall appends an install outcome.
func (d *DB) RecordInstall(e HistoryEntry) error {
	finished := e.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	_, err := d.Exec(`
		INSERT INTO install_history (operation, target, state, error, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.Operation, e.Target, e.State, e.Error, finished.UTC())
	if err != nil {
		return fmt.Errorf("recording install: %w", err)
	}
	return nil
}

// RecentInstalls returns the latest limit entries, newest first.
func (d *DB) RecentInstalls(limit int) ([]HistoryEntry, error) {
	rows, err := d.Query(`
		SELECT id, operation, target, state, COALESCE(error, ''), finished_at
		FROM install_history
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying install history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Operation, &e.Target, &e.State, &e.Error, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning install history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
