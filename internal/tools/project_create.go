package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProjectCreateTool handles the project_create MCP tool.
type ProjectCreateTool struct {
	registry *project.Registry
}

// NewProjectCreateTool creates a ProjectCreateTool with the given registry.
func NewProjectCreateTool(registry *project.Registry) *ProjectCreateTool {
	return &ProjectCreateTool{registry: registry}
}

// Definition returns the MCP tool definition for project_create.
func (t *ProjectCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("project_create",
		mcp.WithDescription(
			"Register a new project and seed its five core documents (handover, constitution, "+
				"architecture, checklist, decisions) from templates. Run this once per codebase "+
				"before using any other lorekeep tool.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Human-readable project name. The project ID is a slug of this name."),
		),
		mcp.WithString("root_path",
			mcp.Description("Absolute path to the project's code on disk, used as the default export target"),
		),
		mcp.WithString("tech_stack",
			mcp.Description("Free-form tech stack description, seeded into the constitution"),
		),
	)
}

// Handle processes the project_create tool call.
func (t *ProjectCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	rootPath := req.GetString("root_path", "")
	techStack := req.GetString("tech_stack", "")

	p, err := t.registry.Create(name, rootPath, techStack)
	if err != nil {
		if errors.Is(err, project.ErrProjectExists) {
			return mcp.NewToolResultError(fmt.Sprintf("a project named %q already exists — use project_list to see it", name)), nil
		}
		return nil, fmt.Errorf("creating project %q: %w", name, err)
	}

	response := fmt.Sprintf("Project created: %s\nID: %s\n", p.Name, p.ID)
	response += "Documents seeded at v1: handover, constitution, architecture, checklist, decisions\n\n"
	response += "Next steps:\n"
	response += fmt.Sprintf("- record_turn after each exchange (project: %s)\n", p.ID)
	response += "- build_context before a model call to assemble the payload\n"
	response += "- propose_change + decide_change to evolve the documents"

	return mcp.NewToolResultText(response), nil
}
