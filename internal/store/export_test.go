package store

import (
	"database/sql"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/ssot"
)

// This file only compiles during `go test`.

// WriteDocument exposes the gate-only write path so tests can drive the
// optimistic version check directly.
func (s *Store) WriteDocument(kind ssot.Kind, content string, expectedVersion int64) (int64, error) {
	return s.writeDocument(s.db, kind, content, expectedVersion)
}

// FailExecOn installs an exec hook that fails any statement containing
// substr; other statements run normally.
func (s *Store) FailExecOn(substr string, failErr error) {
	s.hooks.exec = func(db execer, query string, args ...any) (sql.Result, error) {
		if strings.Contains(query, substr) {
			return nil, failErr
		}
		return db.Exec(query, args...)
	}
}

// FailCommit installs a commit hook that always fails without committing,
// so the caller's deferred rollback takes effect.
func (s *Store) FailCommit(failErr error) {
	s.hooks.commit = func(tx *sql.Tx) error {
		return failErr
	}
}

// ResetHooks restores the default hooks after fault injection.
func (s *Store) ResetHooks() {
	s.hooks = defaultStoreHooks()
}
