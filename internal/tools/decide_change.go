package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// DecideChangeTool handles the decide_change MCP tool.
type DecideChangeTool struct {
	registry *project.Registry
}

// NewDecideChangeTool creates a DecideChangeTool with the given registry.
func NewDecideChangeTool(registry *project.Registry) *DecideChangeTool {
	return &DecideChangeTool{registry: registry}
}

// Definition returns the MCP tool definition for decide_change.
func (t *DecideChangeTool) Definition() mcp.Tool {
	return mcp.NewTool("decide_change",
		mcp.WithDescription(
			"Approve or reject a pending change proposal. Approval atomically writes the document, "+
				"bumps its version, and records the change in conversation history; rejection closes "+
				"the proposal without touching the document. Only call this after the user has "+
				"explicitly accepted or declined the diff.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithString("proposal_id",
			mcp.Required(),
			mcp.Description("Proposal ID returned by propose_change"),
		),
		mcp.WithBoolean("approve",
			mcp.Required(),
			mcp.Description("true to apply the change, false to reject it"),
		),
	)
}

// Handle processes the decide_change tool call.
func (t *DecideChangeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	proposalID := req.GetString("proposal_id", "")
	if proposalID == "" {
		return mcp.NewToolResultError("'proposal_id' is required — use list_changes to see pending proposals"), nil
	}
	if !hasArg(req, "approve") {
		return mcp.NewToolResultError("'approve' is required: true to apply the change, false to reject it"), nil
	}
	approve := boolArg(req, "approve", false)

	p, err := s.DecideChange(proposalID, approve)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("proposal %q not found in project %q", proposalID, id)), nil
		case errors.Is(err, store.ErrDecided):
			return mcp.NewToolResultError(fmt.Sprintf("proposal %q has already been decided", proposalID)), nil
		case errors.Is(err, store.ErrConflict):
			return mcp.NewToolResultError(fmt.Sprintf(
				"the %s document changed after proposal %s was made, so applying it would overwrite newer content. "+
					"The proposal is still pending: reject it, re-read the document, and propose again.",
				kindOf(s, proposalID), proposalID)), nil
		default:
			return nil, fmt.Errorf("deciding proposal %q: %w", proposalID, err)
		}
	}

	if approve {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Change approved: %s is now v%d. A system turn recording the change was appended to history.",
			p.Kind, p.BaseVersion+1,
		)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Change rejected: %s was not modified.", p.Kind)), nil
}

// kindOf names the document a proposal targets, for error messages. Falls
// back to a generic word when the proposal cannot be read.
func kindOf(s *store.Store, proposalID string) string {
	p, err := s.GetProposal(proposalID)
	if err != nil {
		return "target"
	}
	return string(p.Kind)
}
