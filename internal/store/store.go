// Package store persists one project's state: the five SSOT documents, the
// append-only conversation log, and the change proposals that gate every
// document write.
//
// Each project owns one SQLite database. Keeping documents, turns, and
// proposals in the same database is what makes the approval path atomic:
// applying a proposal updates the document, appends a history entry, and
// marks the proposal approved in a single transaction. Either all of it
// lands or none of it does.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Sentinel errors callers branch on with errors.Is.
var (
	// ErrNotFound reports an unknown document, turn, or proposal.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a version mismatch on a gated document write.
	ErrConflict = errors.New("version conflict")
	// ErrPendingExists reports an attempt to open a second pending proposal
	// for the same document.
	ErrPendingExists = errors.New("pending proposal already exists")
	// ErrDecided reports a decision on a proposal that is already terminal.
	ErrDecided = errors.New("proposal already decided")
)

// defaultMaxTurns bounds history retrieval when the caller passes no limit.
const defaultMaxTurns = 50

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds per-project store configuration.
type Config struct {
	// Path is the full path of the project's database file.
	Path string
	// MaxTurns bounds RecentTurns when the caller passes limit <= 0.
	// Zero means the default of 50.
	MaxTurns int
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is one project's persistence engine backed by SQLite.
type Store struct {
	db    *sql.DB
	cfg   Config
	hooks storeHooks
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

type execQueryer interface {
	execer
	queryer
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type sqlRowScanner struct {
	rows *sql.Rows
}

func (r sqlRowScanner) Next() bool             { return r.rows.Next() }
func (r sqlRowScanner) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r sqlRowScanner) Err() error             { return r.rows.Err() }
func (r sqlRowScanner) Close() error           { return r.rows.Close() }

type storeHooks struct {
	exec    func(db execer, query string, args ...any) (sql.Result, error)
	query   func(db queryer, query string, args ...any) (*sql.Rows, error)
	queryIt func(db queryer, query string, args ...any) (rowScanner, error)
	beginTx func(db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		exec: func(db execer, query string, args ...any) (sql.Result, error) {
			return db.Exec(query, args...)
		},
		query: func(db queryer, query string, args ...any) (*sql.Rows, error) {
			return db.Query(query, args...)
		},
		queryIt: func(db queryer, query string, args ...any) (rowScanner, error) {
			rows, err := db.Query(query, args...)
			if err != nil {
				return nil, err
			}
			return sqlRowScanner{rows: rows}, nil
		},
		beginTx: func(db *sql.DB) (*sql.Tx, error) {
			return db.Begin()
		},
		commit: func(tx *sql.Tx) error {
			return tx.Commit()
		},
	}
}

func (s *Store) execHook(db execer, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(db, query, args...)
	}
	return db.Exec(query, args...)
}

func (s *Store) queryItHook(db queryer, query string, args ...any) (rowScanner, error) {
	if s.hooks.queryIt != nil {
		return s.hooks.queryIt(db, query, args...)
	}
	if s.hooks.query != nil {
		rows, err := s.hooks.query(db, query, args...)
		if err != nil {
			return nil, err
		}
		return sqlRowScanner{rows: rows}, nil
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRowScanner{rows: rows}, nil
}

func (s *Store) beginTxHook() (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(s.db)
	}
	return s.db.Begin()
}

func (s *Store) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// Open opens (creating if needed) the project database at cfg.Path, applies
// the connection pragmas, and runs migrations. WAL mode keeps readers off
// the writer's back: a context build never observes a half-applied write,
// it sees the last committed state.
func Open(cfg Config) (*Store, error) {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := openDB("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, hooks: defaultStoreHooks()}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	// turns.seq uses AUTOINCREMENT so SQLite persists the high-water mark in
	// sqlite_sequence: sequence numbers stay strictly increasing and are
	// never reused, even across restarts.
	//
	// idx_proposals_pending enforces at most one pending proposal per
	// document kind.
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			kind       TEXT PRIMARY KEY,
			content    TEXT    NOT NULL,
			version    INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS turns (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			model      TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS proposals (
			id           TEXT PRIMARY KEY,
			kind         TEXT    NOT NULL,
			content      TEXT    NOT NULL,
			diff         TEXT    NOT NULL,
			base_version INTEGER NOT NULL,
			status       TEXT    NOT NULL DEFAULT 'pending',
			created_at   TEXT    NOT NULL DEFAULT (datetime('now')),
			decided_at   TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals(status, created_at DESC);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_pending ON proposals(kind) WHERE status = 'pending';
	`
	if _, err := s.execHook(s.db, schema); err != nil {
		return err
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// nullableString returns nil for blank strings so they store as NULL.
func nullableString(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
