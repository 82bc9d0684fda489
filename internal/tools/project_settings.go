package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProjectSettingsTool handles the project_settings MCP tool.
type ProjectSettingsTool struct {
	registry *project.Registry
}

// NewProjectSettingsTool creates a ProjectSettingsTool with the given registry.
func NewProjectSettingsTool(registry *project.Registry) *ProjectSettingsTool {
	return &ProjectSettingsTool{registry: registry}
}

// Definition returns the MCP tool definition for project_settings.
func (t *ProjectSettingsTool) Definition() mcp.Tool {
	return mcp.NewTool("project_settings",
		mcp.WithDescription(
			"View or update a project's settings. Call with only 'project' to view; "+
				"pass tech_stack and/or max_turns to update. Omitted fields keep their current value.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithString("tech_stack",
			mcp.Description("New tech stack description"),
		),
		mcp.WithNumber("max_turns",
			mcp.Description("New default bound for history retrieval (must be positive)"),
		),
	)
}

// Handle processes the project_settings tool call.
func (t *ProjectSettingsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("project", "")
	if id == "" {
		return mcp.NewToolResultError("'project' is required — use project_list to see registered project IDs"), nil
	}

	techStack := req.GetString("tech_stack", "")
	maxTurns := intArg(req, "max_turns", 0)

	var p *project.Project
	var err error
	var action string
	if techStack == "" && maxTurns == 0 {
		p, err = t.registry.Get(id)
		action = "Settings for"
	} else {
		p, err = t.registry.UpdateSettings(id, techStack, maxTurns)
		action = "Settings updated for"
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found — use project_list to see registered projects", id)), nil
		}
		return nil, fmt.Errorf("project settings for %q: %w", id, err)
	}

	stack := p.TechStack
	if stack == "" {
		stack = "(not set)"
	}
	root := p.RootPath
	if root == "" {
		root = "(not set)"
	}

	response := fmt.Sprintf("%s %s (%s)\n", action, p.Name, p.ID)
	response += fmt.Sprintf("- Tech stack: %s\n", stack)
	response += fmt.Sprintf("- Max turns: %d\n", p.MaxTurns)
	response += fmt.Sprintf("- Root path: %s\n", root)
	response += fmt.Sprintf("- Created: %s", p.CreatedAt)

	return mcp.NewToolResultText(response), nil
}
