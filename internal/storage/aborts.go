package storage

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-cave/internal/vm"
)

// AbortEntry is one logged script abort.
type AbortEntry struct {
	ID        int64
	ScriptID  int
	Offset    int
	Command   string
	Reason    string
	Frame     uint64
	CreatedAt time.Time
}

// AbortSummary aggregates aborts of one script.
type AbortSummary struct {
	ScriptID int
	Count    int
	LastSeen time.Time
}

// RecordAbort implements vm.AbortRecorder.
// This adapter lets the interpreter log aborts without a storage dependency.
func (s *Store) RecordAbort(a vm.Abort) error {
	_, err := s.db.Exec(
		`INSERT INTO aborts (script_id, cmd_offset, command, reason, frame)
		 VALUES (?, ?, ?, ?, ?)`,
		int(a.Script), a.Offset, a.Command, a.Reason, int64(a.Frame),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record abort: %w", err)
	}
	return nil
}

// Ensure Store implements AbortRecorder
var _ vm.AbortRecorder = (*Store)(nil)

// RecentAborts retrieves the most recent aborts, newest first.
func (s *Store) RecentAborts(limit int) ([]AbortEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, script_id, cmd_offset, command, reason, frame, created_at
		 FROM aborts
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query aborts: %w", err)
	}
	defer rows.Close()

	var entries []AbortEntry
	for rows.Next() {
		var e AbortEntry
		var frame int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.ScriptID, &e.Offset, &e.Command, &e.Reason, &frame, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Frame = uint64(frame)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// AbortSummaries counts aborts per script, most frequent first.
func (s *Store) AbortSummaries() ([]AbortSummary, error) {
	rows, err := s.db.Query(
		`SELECT script_id, COUNT(*), MAX(created_at)
		 FROM aborts
		 GROUP BY script_id
		 ORDER BY COUNT(*) DESC, script_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot summarize aborts: %w", err)
	}
	defer rows.Close()

	var out []AbortSummary
	for rows.Next() {
		var sum AbortSummary
		var lastSeen any
		if err := rows.Scan(&sum.ScriptID, &sum.Count, &lastSeen); err != nil {
			return nil, fmt.Errorf("storage: cannot scan summary row: %w", err)
		}
		sum.LastSeen = parseTime(lastSeen)
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// ClearAborts deletes the abort log.
func (s *Store) ClearAborts() error {
	if _, err := s.db.Exec("DELETE FROM aborts"); err != nil {
		return fmt.Errorf("storage: cannot clear aborts: %w", err)
	}
	return nil
}
