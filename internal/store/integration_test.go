package store_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/HendryAvila/lorekeep/internal/ssot"
	"github.com/HendryAvila/lorekeep/internal/store"
)

var errInjected = errors.New("injected storage failure")

// ─── Full Project Lifecycle Integration ──────────────────────────────────────

func TestIntegration_FullProjectLifecycle(t *testing.T) {
	s := newTestStore(t)
	seedDocs(t, s)

	// 1. A conversation happens
	if _, err := s.AppendTurn(store.RoleUser, "let's switch the cache to Redis", ""); err != nil {
		t.Fatalf("AppendTurn user: %v", err)
	}
	if _, err := s.AppendTurn(store.RoleAssistant, "agreed, updating the architecture notes", "claude-sonnet-4"); err != nil {
		t.Fatalf("AppendTurn assistant: %v", err)
	}

	// 2. The assistant proposes a document change
	p, err := s.ProposeChange(ssot.KindArchitecture, "# Architecture\n\nCache: Redis\n")
	if err != nil {
		t.Fatalf("ProposeChange: %v", err)
	}

	// 3. The user approves it
	if _, err := s.DecideChange(p.ID, true); err != nil {
		t.Fatalf("DecideChange: %v", err)
	}

	// 4. The document advanced and the audit turn landed after the conversation
	doc, err := s.Document(ssot.KindArchitecture)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Version != 2 {
		t.Errorf("Version = %d, want 2", doc.Version)
	}

	turns := collectTurns(t, s, 10)
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	if turns[0].Role != store.RoleSystem {
		t.Errorf("newest turn Role = %q, want %q", turns[0].Role, store.RoleSystem)
	}
	if turns[0].Seq != 3 {
		t.Errorf("audit turn Seq = %d, want 3", turns[0].Seq)
	}

	// 5. Export reflects the approved content
	dir := t.TempDir()
	if _, err := s.ExportDocuments(dir); err != nil {
		t.Fatalf("ExportDocuments: %v", err)
	}
}

func TestIntegration_ConflictThenReproposeFlow(t *testing.T) {
	s := newTestStore(t)
	seedDocs(t, s)

	// A proposal is opened against v1, then the document moves to v2.
	stale, err := s.ProposeChange(ssot.KindHandover, "stale proposal\n")
	if err != nil {
		t.Fatalf("ProposeChange: %v", err)
	}
	if _, err := s.WriteDocument(ssot.KindHandover, "moved on\n", 1); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	if _, err := s.DecideChange(stale.ID, true); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}

	// Recovery: withdraw the stale proposal, re-propose against v2, approve.
	if _, err := s.DecideChange(stale.ID, false); err != nil {
		t.Fatalf("reject stale: %v", err)
	}
	fresh, err := s.ProposeChange(ssot.KindHandover, "rebased proposal\n")
	if err != nil {
		t.Fatalf("re-propose: %v", err)
	}
	if fresh.BaseVersion != 2 {
		t.Errorf("fresh BaseVersion = %d, want 2", fresh.BaseVersion)
	}
	if _, err := s.DecideChange(fresh.ID, true); err != nil {
		t.Fatalf("approve fresh: %v", err)
	}

	doc, err := s.Document(ssot.KindHandover)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Version != 3 {
		t.Errorf("Version = %d, want 3", doc.Version)
	}
	if doc.Content != "rebased proposal\n" {
		t.Errorf("Content = %q, want rebased proposal", doc.Content)
	}
}

// ─── Approval Atomicity Under Failure ────────────────────────────────────────

func TestIntegration_ApproveRollsBackWhenTurnInsertFails(t *testing.T) {
	s := newTestStore(t)
	seedDocs(t, s)

	p, err := s.ProposeChange(ssot.KindConstitution, "never visible\n")
	if err != nil {
		t.Fatalf("ProposeChange: %v", err)
	}

	s.FailExecOn("INSERT INTO turns", errInjected)
	_, err = s.DecideChange(p.ID, true)
	s.ResetHooks()
	if !errors.Is(err, errInjected) {
		t.Fatalf("error = %v, want injected failure", err)
	}

	// The document write inside the transaction must have rolled back.
	doc, err := s.Document(ssot.KindConstitution)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("Version = %d after rollback, want 1", doc.Version)
	}
	if !strings.Contains(doc.Content, "seed body for constitution") {
		t.Errorf("Content = %q, want untouched seed body", doc.Content)
	}

	count, err := s.TurnCount()
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if count != 0 {
		t.Errorf("TurnCount = %d after rollback, want 0", count)
	}

	// The proposal is still pending and approvable once storage recovers.
	got, err := s.GetProposal(p.ID)
	if err != nil {
		t.Fatalf("GetProposal: %v", err)
	}
	if got.Status != store.StatusPending {
		t.Fatalf("Status = %q after rollback, want %q", got.Status, store.StatusPending)
	}
	if _, err := s.DecideChange(p.ID, true); err != nil {
		t.Fatalf("approve after recovery: %v", err)
	}
}

func TestIntegration_ApproveRollsBackWhenCommitFails(t *testing.T) {
	s := newTestStore(t)
	seedDocs(t, s)

	p, err := s.ProposeChange(ssot.KindDecisions, "lost to commit failure\n")
	if err != nil {
		t.Fatalf("ProposeChange: %v", err)
	}

	s.FailCommit(errInjected)
	_, err = s.DecideChange(p.ID, true)
	s.ResetHooks()
	if !errors.Is(err, errInjected) {
		t.Fatalf("error = %v, want injected failure", err)
	}

	doc, err := s.Document(ssot.KindDecisions)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("Version = %d after failed commit, want 1", doc.Version)
	}

	count, err := s.TurnCount()
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if count != 0 {
		t.Errorf("TurnCount = %d after failed commit, want 0", count)
	}

	got, err := s.GetProposal(p.ID)
	if err != nil {
		t.Fatalf("GetProposal: %v", err)
	}
	if got.Status != store.StatusPending {
		t.Errorf("Status = %q after failed commit, want %q", got.Status, store.StatusPending)
	}
}

func TestIntegration_SeedRollsBackWhenCommitFails(t *testing.T) {
	s := newTestStore(t)

	contents := make(map[ssot.Kind]string)
	for _, kind := range ssot.KindOrder {
		contents[kind] = "body"
	}

	s.FailCommit(errInjected)
	err := s.Seed(contents)
	s.ResetHooks()
	if !errors.Is(err, errInjected) {
		t.Fatalf("error = %v, want injected failure", err)
	}

	// Nothing half-seeded: the store is still empty and seedable.
	if _, err := s.Document(ssot.KindHandover); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound after failed seed", err)
	}
	if err := s.Seed(contents); err != nil {
		t.Errorf("seed after recovery: %v", err)
	}
}
