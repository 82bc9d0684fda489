// Package prompts implements the MCP prompt handlers for lorekeep.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ResumePrompt handles the resume MCP prompt. It instructs the AI to rebuild
// project context from the stored documents and history and pick the work
// back up from the handover.
type ResumePrompt struct{}

// NewResumePrompt creates a ResumePrompt.
func NewResumePrompt() *ResumePrompt {
	return &ResumePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ResumePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("resume",
		mcp.WithPromptDescription(
			"Resume work on a project: rebuild its context from the stored documents "+
				"and recent conversation, then continue from where the handover left off.",
		),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Project ID to resume (run project_list if unsure)"),
		),
	)
}

// Handle processes the resume prompt request.
func (p *ResumePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	project := ""
	if args := req.Params.Arguments; args != nil {
		project = args["project"]
	}

	lookup := fmt.Sprintf("1. Run `build_context` with project='%s'\n", project)
	if project == "" {
		lookup = "1. Run `project_list`, pick the project I mean (ask if ambiguous), then run `build_context` for it\n"
	}

	return &mcp.GetPromptResult{
		Description: "Resume project work",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I want to resume work on my project.\n\n" +
						"Please:\n" +
						lookup +
						"2. Read the [HANDOVER] section first: it is the state of play from the last session\n" +
						"3. Honor the [CONSTITUTION] rules in everything that follows\n" +
						"4. Tell me briefly where we left off and what you suggest doing next\n" +
						"5. From here on, record our exchanges with `record_turn` so the next session can resume too",
				),
			},
		},
	}, nil
}
