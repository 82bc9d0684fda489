package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/HendryAvila/lorekeep/internal/diff"
	"github.com/HendryAvila/lorekeep/internal/ssot"
)

// newProposalID is a package-level var to allow test injection.
var newProposalID = uuid.NewString

// ProposeChange records a pending proposal to overwrite one document. The
// diff against the current content and the current version are captured
// here; the approval path later verifies the version is still the one the
// diff was computed against. Nothing is written to the document itself.
//
// Only one pending proposal may exist per document kind: a second propose
// fails with ErrPendingExists until the first is decided.
func (s *Store) ProposeChange(kind ssot.Kind, content string) (*Proposal, error) {
	if err := ssot.ValidateKind(kind); err != nil {
		return nil, err
	}

	cur, err := s.Document(kind)
	if err != nil {
		return nil, err
	}

	unified, err := diff.Unified(cur.Content, content,
		fmt.Sprintf("%s (v%d)", kind, cur.Version),
		fmt.Sprintf("%s (proposed)", kind))
	if err != nil {
		return nil, fmt.Errorf("propose %s: %w", kind, err)
	}

	p := &Proposal{
		ID:          newProposalID(),
		Kind:        kind,
		Content:     content,
		Diff:        unified,
		BaseVersion: cur.Version,
		Status:      StatusPending,
		CreatedAt:   Now(),
	}

	// idx_proposals_pending (unique on kind where status = 'pending') keeps
	// the one-pending rule honest even if two callers race past the read.
	if _, err := s.execHook(s.db,
		`INSERT INTO proposals (id, kind, content, diff, base_version, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Kind), p.Content, p.Diff, p.BaseVersion, string(p.Status), p.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("propose %s: %w", kind, ErrPendingExists)
		}
		return nil, fmt.Errorf("propose %s: %w", kind, err)
	}

	return p, nil
}

// GetProposal returns one proposal by id.
func (s *Store) GetProposal(id string) (*Proposal, error) {
	rows, err := s.queryItHook(s.db,
		`SELECT id, kind, content, diff, base_version, status, created_at, decided_at
		 FROM proposals WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("proposal %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}

	var p Proposal
	if err := rows.Scan(&p.ID, &p.Kind, &p.Content, &p.Diff, &p.BaseVersion, &p.Status, &p.CreatedAt, &p.DecidedAt); err != nil {
		return nil, fmt.Errorf("proposal %s: scan: %w", id, err)
	}
	return &p, nil
}

// PendingProposal returns the pending proposal for a kind, or ErrNotFound
// when none is open.
func (s *Store) PendingProposal(kind ssot.Kind) (*Proposal, error) {
	if err := ssot.ValidateKind(kind); err != nil {
		return nil, err
	}

	rows, err := s.queryItHook(s.db,
		`SELECT id, kind, content, diff, base_version, status, created_at, decided_at
		 FROM proposals WHERE kind = ? AND status = ?`,
		string(kind), string(StatusPending))
	if err != nil {
		return nil, fmt.Errorf("pending proposal for %s: %w", kind, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("pending proposal for %s: %w", kind, ErrNotFound)
	}

	var p Proposal
	if err := rows.Scan(&p.ID, &p.Kind, &p.Content, &p.Diff, &p.BaseVersion, &p.Status, &p.CreatedAt, &p.DecidedAt); err != nil {
		return nil, fmt.Errorf("pending proposal for %s: scan: %w", kind, err)
	}
	return &p, nil
}

// ListProposals returns proposals newest first, optionally filtered by
// status. An empty status lists everything.
func (s *Store) ListProposals(status ProposalStatus) ([]Proposal, error) {
	query := `SELECT id, kind, content, diff, base_version, status, created_at, decided_at FROM proposals`
	var args []any
	if status != "" {
		if err := ValidateStatus(status); err != nil {
			return nil, err
		}
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.queryItHook(s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		var p Proposal
		if err := rows.Scan(&p.ID, &p.Kind, &p.Content, &p.Diff, &p.BaseVersion, &p.Status, &p.CreatedAt, &p.DecidedAt); err != nil {
			return nil, fmt.Errorf("list proposals: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return out, nil
}

// DecideChange resolves a pending proposal. Reject is a pure status change
// with no other side effects. Approve runs one transaction that (1)
// re-checks the document version against the proposal's base version, (2)
// writes the document, (3) appends a history turn recording the change, and
// (4) marks the proposal approved.
//
// A version mismatch fails with ErrConflict and leaves the proposal pending
// so the caller can re-diff and re-propose. Any storage failure inside the
// transaction rolls the whole unit back: a document write is never visible
// without its history entry.
func (s *Store) DecideChange(id string, approve bool) (*Proposal, error) {
	p, err := s.GetProposal(id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, fmt.Errorf("proposal %s is %s: %w", id, p.Status, ErrDecided)
	}

	if !approve {
		decidedAt := Now()
		res, err := s.execHook(s.db,
			`UPDATE proposals SET status = ?, decided_at = ? WHERE id = ? AND status = ?`,
			string(StatusRejected), decidedAt, id, string(StatusPending))
		if err != nil {
			return nil, fmt.Errorf("reject %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("proposal %s: %w", id, ErrDecided)
		}
		p.Status = StatusRejected
		p.DecidedAt = &decidedAt
		return p, nil
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return nil, fmt.Errorf("approve %s: begin tx: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	newVersion, err := s.writeDocument(tx, p.Kind, p.Content, p.BaseVersion)
	if err != nil {
		return nil, fmt.Errorf("approve %s: %w", id, err)
	}

	note := fmt.Sprintf("applied change to %s (v%d -> v%d, %s)",
		p.Kind, p.BaseVersion, newVersion, diff.Summary(p.Diff))
	if _, err := s.appendTurn(tx, RoleSystem, note, ""); err != nil {
		return nil, fmt.Errorf("approve %s: %w", id, err)
	}

	decidedAt := Now()
	res, err := s.execHook(tx,
		`UPDATE proposals SET status = ?, decided_at = ? WHERE id = ? AND status = ?`,
		string(StatusApproved), decidedAt, id, string(StatusPending))
	if err != nil {
		return nil, fmt.Errorf("approve %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("proposal %s: %w", id, ErrDecided)
	}

	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("approve %s: commit: %w", id, err)
	}

	p.Status = StatusApproved
	p.DecidedAt = &decidedAt
	return p, nil
}
