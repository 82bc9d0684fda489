package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/diff"
	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProposeChangeTool handles the propose_change MCP tool.
type ProposeChangeTool struct {
	registry *project.Registry
}

// NewProposeChangeTool creates a ProposeChangeTool with the given registry.
func NewProposeChangeTool(registry *project.Registry) *ProposeChangeTool {
	return &ProposeChangeTool{registry: registry}
}

// Definition returns the MCP tool definition for propose_change.
func (t *ProposeChangeTool) Definition() mcp.Tool {
	return mcp.NewTool("propose_change",
		mcp.WithDescription(
			"Propose replacing one core document's content. Nothing is written until the user "+
				"approves via decide_change; the response carries the diff so the user can review it. "+
				"Only one proposal per document may be pending at a time.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Document to change: handover, constitution, architecture, checklist, or decisions"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The full replacement content for the document"),
		),
	)
}

// Handle processes the propose_change tool call.
func (t *ProposeChangeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	kind, errResult := kindArg(req)
	if errResult != nil {
		return errResult, nil
	}

	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required: the full replacement text for the document"), nil
	}

	p, err := s.ProposeChange(kind, content)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPendingExists):
			msg := fmt.Sprintf("a proposal for %q is already pending", kind)
			if pending, perr := s.PendingProposal(kind); perr == nil {
				msg += fmt.Sprintf(" (id: %s)", pending.ID)
			}
			return mcp.NewToolResultError(msg + " — decide it first with decide_change"), nil
		case errors.Is(err, store.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("document %q not found in project %q", kind, id)), nil
		default:
			return nil, fmt.Errorf("proposing change to %q: %w", kind, err)
		}
	}

	response := fmt.Sprintf("Change proposed for %s (id: %s)\n", p.Kind, p.ID)
	response += fmt.Sprintf("Base version: %d\n", p.BaseVersion)
	response += fmt.Sprintf("Diff (%s):\n\n%s\n", diff.Summary(p.Diff), p.Diff)
	response += "Ask the user to review, then call decide_change with approve=true or approve=false."

	return mcp.NewToolResultText(response), nil
}
