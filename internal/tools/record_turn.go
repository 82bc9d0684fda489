package tools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// RecordTurnTool handles the record_turn MCP tool.
type RecordTurnTool struct {
	registry *project.Registry
}

// NewRecordTurnTool creates a RecordTurnTool with the given registry.
func NewRecordTurnTool(registry *project.Registry) *RecordTurnTool {
	return &RecordTurnTool{registry: registry}
}

// Definition returns the MCP tool definition for record_turn.
func (t *RecordTurnTool) Definition() mcp.Tool {
	return mcp.NewTool("record_turn",
		mcp.WithDescription(
			"Append one conversation turn to the project's history. History is append-only and "+
				"immutable; record every user and assistant exchange so the next session can rebuild "+
				"its context with build_context.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithString("role",
			mcp.Required(),
			mcp.Description("Who produced the turn: user, assistant, system, or tool"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The turn's text, stored verbatim"),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier that produced an assistant turn"),
		),
	)
}

// Handle processes the record_turn tool call.
func (t *RecordTurnTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, _, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	role := store.Role(req.GetString("role", ""))
	if err := store.ValidateRole(role); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	model := req.GetString("model", "")

	seq, err := s.AppendTurn(role, content, model)
	if err != nil {
		return nil, fmt.Errorf("recording turn: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Turn recorded (seq %d).", seq)), nil
}
