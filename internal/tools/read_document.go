package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/ssot"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ReadDocumentTool handles the read_document MCP tool.
type ReadDocumentTool struct {
	registry *project.Registry
}

// NewReadDocumentTool creates a ReadDocumentTool with the given registry.
func NewReadDocumentTool(registry *project.Registry) *ReadDocumentTool {
	return &ReadDocumentTool{registry: registry}
}

// Definition returns the MCP tool definition for read_document.
func (t *ReadDocumentTool) Definition() mcp.Tool {
	return mcp.NewTool("read_document",
		mcp.WithDescription(
			"Read one of the project's five core documents in full, with its current version. "+
				"Note the version if you plan to propose a change against it.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Document to read: handover, constitution, architecture, checklist, or decisions"),
		),
	)
}

// Handle processes the read_document tool call.
func (t *ReadDocumentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	kind, errResult := kindArg(req)
	if errResult != nil {
		return errResult, nil
	}

	doc, err := s.Document(kind)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document %q not found in project %q", kind, id)), nil
		}
		return nil, fmt.Errorf("reading document %q: %w", kind, err)
	}

	header := fmt.Sprintf("%s — v%d, updated %s\n\n", ssot.Title(doc.Kind), doc.Version, doc.UpdatedAt)
	return mcp.NewToolResultText(header + doc.Content), nil
}
