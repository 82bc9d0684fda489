package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/diff"
	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListChangesTool handles the list_changes MCP tool.
type ListChangesTool struct {
	registry *project.Registry
}

// NewListChangesTool creates a ListChangesTool with the given registry.
func NewListChangesTool(registry *project.Registry) *ListChangesTool {
	return &ListChangesTool{registry: registry}
}

// Definition returns the MCP tool definition for list_changes.
func (t *ListChangesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_changes",
		mcp.WithDescription(
			"List a project's change proposals, newest first, optionally filtered by status. "+
				"Use it to find pending proposals awaiting a decision or to audit past changes.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithString("status",
			mcp.Description("Filter: pending, approved, or rejected (default: all)"),
		),
	)
}

// Handle processes the list_changes tool call.
func (t *ListChangesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	status := store.ProposalStatus(req.GetString("status", ""))
	if status != "" {
		if err := store.ValidateStatus(status); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	proposals, err := s.ListProposals(status)
	if err != nil {
		return nil, fmt.Errorf("listing proposals for %q: %w", id, err)
	}

	if len(proposals) == 0 {
		if status != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No %s proposals in project %q.", status, id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("No change proposals in project %q yet.", id)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Change proposals for %s (%d)\n\n", id, len(proposals))
	for _, p := range proposals {
		fmt.Fprintf(&sb, "- `%s` [%s] %s — base v%d, %s, created %s",
			p.ID, p.Status, p.Kind, p.BaseVersion, diff.Summary(p.Diff), p.CreatedAt)
		if p.DecidedAt != nil {
			fmt.Fprintf(&sb, ", decided %s", *p.DecidedAt)
		}
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
