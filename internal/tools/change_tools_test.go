package tools

import (
	"context"
	"strings"
	"testing"
)

const replacementChecklist = "# Checklist\n\n- [x] design schema\n- [ ] wire transport\n"

// proposalIDFrom extracts the "(id: ...)" value from a propose_change response.
func proposalIDFrom(t *testing.T, text string) string {
	t.Helper()
	_, after, found := strings.Cut(text, "(id: ")
	if !found {
		t.Fatalf("response carries no proposal id: %s", text)
	}
	id, _, found := strings.Cut(after, ")")
	if !found {
		t.Fatalf("unterminated proposal id in response: %s", text)
	}
	return id
}

// ─── ProposeChangeTool ───────────────────────────────────────────────────────

func TestProposeChangeTool_Handle_Success(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	tool := NewProposeChangeTool(registry)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
		"content": replacementChecklist,
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, "Change proposed for checklist") {
		t.Errorf("response should name the document, got: %s", text)
	}
	if !strings.Contains(text, "Base version: 1") {
		t.Errorf("response should carry the base version, got: %s", text)
	}
	if !strings.Contains(text, "design schema") || !strings.Contains(text, "decide_change") {
		t.Errorf("response should show the diff and point at decide_change, got: %s", text)
	}
}

func TestProposeChangeTool_Handle_MissingContent(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	tool := NewProposeChangeTool(registry)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
	}))
	mustBeToolError(t, result, err, "'content' is required")
}

func TestProposeChangeTool_Handle_SecondPendingRejected(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	tool := NewProposeChangeTool(registry)

	first, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
		"content": replacementChecklist,
	}))
	mustNotError(t, first, err)
	firstID := proposalIDFrom(t, resultText(first))

	second, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
		"content": "# Checklist\n\n- [ ] other plan\n",
	}))
	mustBeToolError(t, second, err, "already pending")
	if !strings.Contains(resultText(second), firstID) {
		t.Errorf("error should name the blocking proposal %s, got: %s", firstID, resultText(second))
	}
}

// ─── DecideChangeTool ────────────────────────────────────────────────────────

func TestDecideChangeTool_Handle_Approve(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	proposeTool := NewProposeChangeTool(registry)
	decideTool := NewDecideChangeTool(registry)

	proposed, err := proposeTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
		"content": replacementChecklist,
	}))
	mustNotError(t, proposed, err)
	proposalID := proposalIDFrom(t, resultText(proposed))

	decided, err := decideTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":     p.ID,
		"proposal_id": proposalID,
		"approve":     true,
	}))
	mustNotError(t, decided, err)

	if !strings.Contains(resultText(decided), "checklist is now v2") {
		t.Errorf("approval should report the new version, got: %s", resultText(decided))
	}

	s, err := registry.Store(p.ID)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	doc, err := s.Document("checklist")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Version != 2 || doc.Content != replacementChecklist {
		t.Errorf("document not applied: v%d content %q", doc.Version, doc.Content)
	}

	// Approval appends the audit turn.
	count, err := s.TurnCount()
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if count != 1 {
		t.Errorf("approval should append one system turn, got %d", count)
	}
}

func TestDecideChangeTool_Handle_Reject(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	proposeTool := NewProposeChangeTool(registry)
	decideTool := NewDecideChangeTool(registry)

	proposed, err := proposeTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
		"content": replacementChecklist,
	}))
	mustNotError(t, proposed, err)
	proposalID := proposalIDFrom(t, resultText(proposed))

	decided, err := decideTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":     p.ID,
		"proposal_id": proposalID,
		"approve":     false,
	}))
	mustNotError(t, decided, err)

	if !strings.Contains(resultText(decided), "Change rejected") {
		t.Errorf("rejection should be reported, got: %s", resultText(decided))
	}

	s, err := registry.Store(p.ID)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	doc, err := s.Document("checklist")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("rejection must not touch the document, got v%d", doc.Version)
	}
}

func TestDecideChangeTool_Handle_MissingApprove(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	tool := NewDecideChangeTool(registry)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":     p.ID,
		"proposal_id": "whatever",
	}))
	mustBeToolError(t, result, err, "'approve' is required")
}

func TestDecideChangeTool_Handle_UnknownProposal(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	tool := NewDecideChangeTool(registry)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":     p.ID,
		"proposal_id": "no-such-id",
		"approve":     true,
	}))
	mustBeToolError(t, result, err, "not found")
}

func TestDecideChangeTool_Handle_AlreadyDecided(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	proposeTool := NewProposeChangeTool(registry)
	decideTool := NewDecideChangeTool(registry)

	proposed, err := proposeTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
		"content": replacementChecklist,
	}))
	mustNotError(t, proposed, err)
	proposalID := proposalIDFrom(t, resultText(proposed))

	args := map[string]interface{}{
		"project":     p.ID,
		"proposal_id": proposalID,
		"approve":     false,
	}
	first, err := decideTool.Handle(context.Background(), makeReq(args))
	mustNotError(t, first, err)

	second, err := decideTool.Handle(context.Background(), makeReq(args))
	mustBeToolError(t, second, err, "already been decided")
}

// ─── ListChangesTool ─────────────────────────────────────────────────────────

func TestListChangesTool_Handle_EmptyAndInvalidFilter(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	tool := NewListChangesTool(registry)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
	}))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "No change proposals") {
		t.Errorf("empty history should say so, got: %s", resultText(result))
	}

	result, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"status":  "bogus",
	}))
	mustBeToolError(t, result, err, "invalid proposal status")
}

func TestListChangesTool_Handle_FiltersByStatus(t *testing.T) {
	registry := newTestRegistry(t)
	p := seedProject(t, registry)
	proposeTool := NewProposeChangeTool(registry)
	decideTool := NewDecideChangeTool(registry)
	listTool := NewListChangesTool(registry)

	// One rejected checklist proposal, one pending handover proposal.
	proposed, err := proposeTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "checklist",
		"content": replacementChecklist,
	}))
	mustNotError(t, proposed, err)
	rejectedID := proposalIDFrom(t, resultText(proposed))

	decided, err := decideTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":     p.ID,
		"proposal_id": rejectedID,
		"approve":     false,
	}))
	mustNotError(t, decided, err)

	proposed, err = proposeTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"kind":    "handover",
		"content": "# Handover\n\nMid-flight notes.\n",
	}))
	mustNotError(t, proposed, err)
	pendingID := proposalIDFrom(t, resultText(proposed))

	all, err := listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
	}))
	mustNotError(t, all, err)
	text := resultText(all)
	if !strings.Contains(text, rejectedID) || !strings.Contains(text, pendingID) {
		t.Errorf("unfiltered list should carry both proposals, got: %s", text)
	}

	pendingOnly, err := listTool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": p.ID,
		"status":  "pending",
	}))
	mustNotError(t, pendingOnly, err)
	text = resultText(pendingOnly)
	if strings.Contains(text, rejectedID) {
		t.Errorf("pending filter should drop the rejected proposal, got: %s", text)
	}
	if !strings.Contains(text, pendingID) {
		t.Errorf("pending filter should keep the pending proposal, got: %s", text)
	}
}
