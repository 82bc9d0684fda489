package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HendryAvila/lorekeep/internal/ssot"
)

// Seed inserts the initial content for all five documents. It runs once, at
// project creation, inside a single transaction; a second call fails because
// documents are never re-created while the project exists.
func (s *Store) Seed(contents map[ssot.Kind]string) error {
	tx, err := s.beginTxHook()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, kind := range ssot.KindOrder {
		content, ok := contents[kind]
		if !ok {
			return fmt.Errorf("seed: missing content for %s", kind)
		}
		if _, err := s.execHook(tx,
			`INSERT INTO documents (kind, content, version, updated_at) VALUES (?, ?, 1, ?)`,
			string(kind), content, Now(),
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("seed: document %s already exists", kind)
			}
			return fmt.Errorf("seed: insert %s: %w", kind, err)
		}
	}

	if err := s.commitHook(tx); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}

// Document returns one document with its full content.
func (s *Store) Document(kind ssot.Kind) (*Document, error) {
	if err := ssot.ValidateKind(kind); err != nil {
		return nil, err
	}

	rows, err := s.queryItHook(s.db,
		`SELECT kind, content, version, updated_at FROM documents WHERE kind = ?`,
		string(kind))
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", kind, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("document %s: %w", kind, ErrNotFound)
	}

	var d Document
	if err := rows.Scan(&d.Kind, &d.Content, &d.Version, &d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("document %s: scan: %w", kind, err)
	}
	return &d, nil
}

// Documents lists the five documents in canonical order, metadata only.
// The result always has exactly five entries; a seeded project cannot lose
// a document, so a missing row means the database is corrupt and surfaces
// as an error rather than a short list.
func (s *Store) Documents() ([]DocumentInfo, error) {
	rows, err := s.queryItHook(s.db,
		`SELECT kind, version, updated_at, length(content) FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	byKind := make(map[ssot.Kind]DocumentInfo, len(ssot.KindOrder))
	for rows.Next() {
		var info DocumentInfo
		if err := rows.Scan(&info.Kind, &info.Version, &info.UpdatedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("list documents: scan: %w", err)
		}
		byKind[info.Kind] = info
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	out := make([]DocumentInfo, 0, len(ssot.KindOrder))
	for _, kind := range ssot.KindOrder {
		info, ok := byKind[kind]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", kind, ErrNotFound)
		}
		out = append(out, info)
	}
	return out, nil
}

// writeDocument applies a gated write: content replaces the current body
// only if the stored version still equals expectedVersion. Returns the new
// version. Unexported: request handling never writes a document directly;
// only the approval path in DecideChange reaches here, with its own
// transaction.
func (s *Store) writeDocument(db execQueryer, kind ssot.Kind, content string, expectedVersion int64) (int64, error) {
	res, err := s.execHook(db,
		`UPDATE documents SET content = ?, version = version + 1, updated_at = ? WHERE kind = ? AND version = ?`,
		content, Now(), string(kind), expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", kind, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write %s: rows affected: %w", kind, err)
	}
	if n == 1 {
		return expectedVersion + 1, nil
	}

	// No row changed: the document is missing or its version moved on.
	rows, err := s.queryItHook(db, `SELECT version FROM documents WHERE kind = ?`, string(kind))
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", kind, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, fmt.Errorf("write %s: %w", kind, ErrNotFound)
	}
	var current int64
	if err := rows.Scan(&current); err != nil {
		return 0, fmt.Errorf("write %s: scan: %w", kind, err)
	}
	return 0, fmt.Errorf("write %s: expected version %d, have %d: %w", kind, expectedVersion, current, ErrConflict)
}

// ExportDocuments writes the current documents to dir as markdown files
// (HANDOVER.md, CONSTITUTION.md, ...) so they can be read in an editor or
// committed alongside the code. Export is one-way: edits to the exported
// files do not flow back, documents change only through proposals.
func (s *Store) ExportDocuments(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("export: create dir: %w", err)
	}

	written := make([]string, 0, len(ssot.KindOrder))
	for _, kind := range ssot.KindOrder {
		doc, err := s.Document(kind)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, ssot.Filename(kind))
		if err := os.WriteFile(path, []byte(doc.Content), 0644); err != nil {
			return nil, fmt.Errorf("export %s: %w", kind, err)
		}
		written = append(written, path)
	}
	return written, nil
}
