package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// RecordTransitions stores a batch of transitions from one check cycle
func (s *Store) RecordTransitions(transitions []port.DirTransition) error {
	if len(transitions) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO dir_transitions (dir, from_state, to_state, cause, message, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range transitions {
		if _, err := stmt.Exec(t.Dir, t.FromState, t.ToState, t.Cause, t.Message, t.CheckedAt); err != nil {
			return fmt.Errorf("failed to insert transition for %s: %w", t.Dir, err)
		}
	}
	return tx.Commit()
}

// RecentTransitions returns up to limit transitions, newest first
func (s *Store) RecentTransitions(limit int) ([]port.DirTransition, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, dir, from_state, to_state, cause, message, checked_at
		FROM dir_transitions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	var transitions []port.DirTransition
	for rows.Next() {
		var t port.DirTransition
		var cause, message sql.NullString
		if err := rows.Scan(&t.ID, &t.Dir, &t.FromState, &t.ToState, &cause, &message, &t.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		if cause.Valid {
			t.Cause = cause.String
		}
		if message.Valid {
			t.Message = message.String
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}
