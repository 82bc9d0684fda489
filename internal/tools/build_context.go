package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/config"
	"github.com/HendryAvila/lorekeep/internal/contextbuild"
	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/mark3labs/mcp-go/mcp"
)

// BuildContextTool handles the build_context MCP tool.
type BuildContextTool struct {
	registry *project.Registry
	cfg      *config.Config
}

// NewBuildContextTool creates a BuildContextTool with the given registry and
// server configuration (source of the default and per-model budgets).
func NewBuildContextTool(registry *project.Registry, cfg *config.Config) *BuildContextTool {
	return &BuildContextTool{registry: registry, cfg: cfg}
}

// Definition returns the MCP tool definition for build_context.
func (t *BuildContextTool) Definition() mcp.Tool {
	return mcp.NewTool("build_context",
		mcp.WithDescription(
			"Assemble the context payload for the next model request: the core documents in "+
				"priority order (handover first), then the newest conversation turns, all within a "+
				"size budget. Deterministic: identical state and budget produce identical output. "+
				"Call this at the start of a session or before a model call that needs project context.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithNumber("budget_chars",
			mcp.Description("Explicit budget in characters (overrides everything else)"),
		),
		mcp.WithNumber("budget_tokens",
			mcp.Description("Budget in tokens, converted at roughly 4 characters per token"),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier, looked up in the server config's per-model budget table"),
		),
	)
}

// Handle processes the build_context tool call.
func (t *BuildContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	budget := contextbuild.Budget{
		Chars:        intArg(req, "budget_chars", 0),
		Tokens:       intArg(req, "budget_tokens", 0),
		Model:        req.GetString("model", ""),
		ModelTokens:  t.cfg.Budget.ModelTokens,
		DefaultChars: t.cfg.Budget.DefaultChars,
	}

	payload, err := contextbuild.Build(s, budget)
	if err != nil {
		return nil, fmt.Errorf("building context for %q: %w", id, err)
	}

	meta := fmt.Sprintf("%d chars | sections: %s | turns: %d", payload.Size, sectionList(payload.Sections), payload.TurnCount)
	if payload.Truncated {
		meta += " | truncated: one document was cut to fit the budget"
	}

	return mcp.NewToolResultText(meta + "\n\n" + payload.Text), nil
}

// sectionList renders the included document kinds for the meta line.
func sectionList(sections []string) string {
	if len(sections) == 0 {
		return "none"
	}
	return strings.Join(sections, ", ")
}
