package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// RecentHistoryTool handles the recent_history MCP tool.
type RecentHistoryTool struct {
	registry *project.Registry
}

// NewRecentHistoryTool creates a RecentHistoryTool with the given registry.
func NewRecentHistoryTool(registry *project.Registry) *RecentHistoryTool {
	return &RecentHistoryTool{registry: registry}
}

// Definition returns the MCP tool definition for recent_history.
func (t *RecentHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("recent_history",
		mcp.WithDescription(
			"Retrieve the most recent conversation turns, newest first. For assembling a model "+
				"prompt prefer build_context, which combines history with the core documents under "+
				"a size budget.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum turns to return (default: the project's max_turns setting)"),
		),
	)
}

// Handle processes the recent_history tool call.
func (t *RecentHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	limit := intArg(req, "limit", 0)

	var turns []store.Turn
	for turn, err := range s.RecentTurns(limit) {
		if err != nil {
			return nil, fmt.Errorf("reading history for %q: %w", id, err)
		}
		turns = append(turns, turn)
	}

	if len(turns) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No turns recorded in project %q yet. Use record_turn to start.", id)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Recent history for %s (%d turns, newest first)\n\n", id, len(turns))
	for _, turn := range turns {
		fmt.Fprintf(&sb, "[%d] %s", turn.Seq, turn.Role)
		if turn.Model != "" {
			fmt.Fprintf(&sb, " (%s)", turn.Model)
		}
		fmt.Fprintf(&sb, " at %s:\n%s\n\n", turn.CreatedAt, turn.Content)
	}

	return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
}
