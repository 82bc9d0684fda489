package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProjectListTool handles the project_list MCP tool.
type ProjectListTool struct {
	registry *project.Registry
}

// NewProjectListTool creates a ProjectListTool with the given registry.
func NewProjectListTool(registry *project.Registry) *ProjectListTool {
	return &ProjectListTool{registry: registry}
}

// Definition returns the MCP tool definition for project_list.
func (t *ProjectListTool) Definition() mcp.Tool {
	return mcp.NewTool("project_list",
		mcp.WithDescription(
			"List all registered projects with their IDs and settings. "+
				"Every other tool takes one of these IDs as its 'project' argument.",
		),
	)
}

// Handle processes the project_list tool call.
func (t *ProjectListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.registry.List()
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects registered yet. Use project_create to add one."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Projects (%d)\n\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(&sb, "- **%s** — id: `%s`, created %s, max turns %d", p.Name, p.ID, p.CreatedAt, p.MaxTurns)
		if p.TechStack != "" {
			fmt.Fprintf(&sb, ", stack: %s", p.TechStack)
		}
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
