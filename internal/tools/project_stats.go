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

// ProjectStatsTool handles the project_stats MCP tool.
type ProjectStatsTool struct {
	registry *project.Registry
}

// NewProjectStatsTool creates a ProjectStatsTool with the given registry.
func NewProjectStatsTool(registry *project.Registry) *ProjectStatsTool {
	return &ProjectStatsTool{registry: registry}
}

// Definition returns the MCP tool definition for project_stats.
func (t *ProjectStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("project_stats",
		mcp.WithDescription(
			"Summarize a project's state: document versions, history size, and pending change "+
				"proposals. A good first call when resuming work on a project.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
	)
}

// Handle processes the project_stats tool call.
func (t *ProjectStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	p, err := t.registry.Get(id)
	if err != nil {
		return nil, fmt.Errorf("reading project %q: %w", id, err)
	}
	infos, err := s.Documents()
	if err != nil {
		return nil, fmt.Errorf("listing documents for %q: %w", id, err)
	}
	turnCount, err := s.TurnCount()
	if err != nil {
		return nil, fmt.Errorf("counting turns for %q: %w", id, err)
	}
	lastSeq, err := s.LastSeq()
	if err != nil {
		return nil, fmt.Errorf("reading last turn for %q: %w", id, err)
	}
	pending, err := s.ListProposals(store.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("listing pending proposals for %q: %w", id, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s)\n\n", p.Name, p.ID)
	fmt.Fprintf(&sb, "- Created: %s\n", p.CreatedAt)
	if p.TechStack != "" {
		fmt.Fprintf(&sb, "- Tech stack: %s\n", p.TechStack)
	}
	fmt.Fprintf(&sb, "- Max turns: %d\n", p.MaxTurns)

	sb.WriteString("\n### Documents\n\n")
	for _, info := range infos {
		fmt.Fprintf(&sb, "- %s v%d, %d bytes, updated %s\n", info.Kind, info.Version, info.Size, info.UpdatedAt)
	}

	sb.WriteString("\n### History\n\n")
	fmt.Fprintf(&sb, "- %d turns recorded (last seq %d)\n", turnCount, lastSeq)

	sb.WriteString("\n### Pending changes\n\n")
	if len(pending) == 0 {
		sb.WriteString("- none\n")
	} else {
		for _, prop := range pending {
			fmt.Fprintf(&sb, "- `%s` %s (%s, created %s)\n", prop.ID, prop.Kind, diff.Summary(prop.Diff), prop.CreatedAt)
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
