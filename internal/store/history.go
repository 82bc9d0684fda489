package store

import (
	"database/sql"
	"fmt"
	"iter"
)

// AppendTurn records one conversation turn and returns its sequence number.
// The insert is a single statement: the turn is durably recorded or not at
// all, never partially.
func (s *Store) AppendTurn(role Role, content, model string) (int64, error) {
	return s.appendTurn(s.db, role, content, model)
}

// appendTurn is the shared insert path. The approval transaction calls it
// with its own tx so the document write and the history entry commit
// together.
func (s *Store) appendTurn(db execer, role Role, content, model string) (int64, error) {
	if err := ValidateRole(role); err != nil {
		return 0, err
	}

	res, err := s.execHook(db,
		`INSERT INTO turns (role, content, model, created_at) VALUES (?, ?, ?, ?)`,
		string(role), content, nullableString(model), Now())
	if err != nil {
		return 0, fmt.Errorf("append turn: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append turn: last insert id: %w", err)
	}
	return seq, nil
}

// RecentTurns returns up to limit turns, most recent first, as a lazy
// sequence: rows stream from the database as the caller iterates instead of
// loading the whole history, and each new range re-runs the query, so the
// sequence is restartable. limit <= 0 falls back to the configured MaxTurns.
// Errors are yielded in-band as the second value.
func (s *Store) RecentTurns(limit int) iter.Seq2[Turn, error] {
	if limit <= 0 {
		limit = s.cfg.MaxTurns
	}

	return func(yield func(Turn, error) bool) {
		rows, err := s.queryItHook(s.db,
			`SELECT seq, role, content, model, created_at FROM turns ORDER BY seq DESC LIMIT ?`,
			limit)
		if err != nil {
			yield(Turn{}, fmt.Errorf("recent turns: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var t Turn
			var model sql.NullString
			if err := rows.Scan(&t.Seq, &t.Role, &t.Content, &model, &t.CreatedAt); err != nil {
				yield(Turn{}, fmt.Errorf("recent turns: scan: %w", err))
				return
			}
			t.Model = model.String
			if !yield(t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Turn{}, fmt.Errorf("recent turns: %w", err))
		}
	}
}

// TurnCount reports how many turns the project has recorded.
func (s *Store) TurnCount() (int64, error) {
	rows, err := s.queryItHook(s.db, `SELECT COUNT(*) FROM turns`)
	if err != nil {
		return 0, fmt.Errorf("turn count: %w", err)
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("turn count: scan: %w", err)
		}
	}
	return n, nil
}

// LastSeq returns the highest sequence number issued so far, 0 when no turn
// has been recorded.
func (s *Store) LastSeq() (int64, error) {
	rows, err := s.queryItHook(s.db, `SELECT COALESCE(MAX(seq), 0) FROM turns`)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	defer rows.Close()

	var seq int64
	if rows.Next() {
		if err := rows.Scan(&seq); err != nil {
			return 0, fmt.Errorf("last seq: scan: %w", err)
		}
	}
	return seq, nil
}
