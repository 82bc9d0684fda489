package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the status MCP prompt. It instructs the AI to read
// and present a project's current state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("status",
		mcp.WithPromptDescription(
			"Check the current status of a project: document versions, history size, "+
				"and change proposals waiting for a decision.",
		),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Project ID to check (run project_list if unsure)"),
		),
	)
}

// Handle processes the status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	project := ""
	if args := req.Params.Arguments; args != nil {
		project = args["project"]
	}

	lookup := fmt.Sprintf("1. Run `project_stats` with project='%s'\n", project)
	if project == "" {
		lookup = "1. Run `project_list`, pick the project I mean (ask if ambiguous), then run `project_stats` for it\n"
	}

	return &mcp.GetPromptResult{
		Description: "Project status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Show me where my project stands.\n\n" +
						"Please:\n" +
						lookup +
						"2. Run `list_changes` with status='pending' and show me any diffs waiting for my decision\n" +
						"3. Summarize the document versions and history size in a short, readable form\n" +
						"4. Tell me if anything needs my attention (stale handover, pending proposals)",
				),
			},
		},
	}, nil
}
