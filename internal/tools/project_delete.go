package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProjectDeleteTool handles the project_delete MCP tool.
type ProjectDeleteTool struct {
	registry *project.Registry
}

// NewProjectDeleteTool creates a ProjectDeleteTool with the given registry.
func NewProjectDeleteTool(registry *project.Registry) *ProjectDeleteTool {
	return &ProjectDeleteTool{registry: registry}
}

// Definition returns the MCP tool definition for project_delete.
func (t *ProjectDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("project_delete",
		mcp.WithDescription(
			"Unregister a project. By default its database stays on disk so history can be "+
				"recovered manually; pass purge=true to remove the directory and everything in it. "+
				"Only call this when the user explicitly asks for it.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithBoolean("purge",
			mcp.Description("Also delete the database and all conversation history (default: false)"),
		),
	)
}

// Handle processes the project_delete tool call.
func (t *ProjectDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("project", "")
	if id == "" {
		return mcp.NewToolResultError("'project' is required — use project_list to see registered project IDs"), nil
	}
	purge := boolArg(req, "purge", false)

	if err := t.registry.Delete(id, purge); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found — use project_list to see registered projects", id)), nil
		}
		return nil, fmt.Errorf("deleting project %q: %w", id, err)
	}

	if purge {
		return mcp.NewToolResultText(fmt.Sprintf("Project %q deleted and its data purged.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Project %q unregistered. Its database remains at %s until removed manually.",
		id, t.registry.ProjectPath(id),
	)), nil
}
