package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/ssot"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListDocumentsTool handles the list_documents MCP tool.
type ListDocumentsTool struct {
	registry *project.Registry
}

// NewListDocumentsTool creates a ListDocumentsTool with the given registry.
func NewListDocumentsTool(registry *project.Registry) *ListDocumentsTool {
	return &ListDocumentsTool{registry: registry}
}

// Definition returns the MCP tool definition for list_documents.
func (t *ListDocumentsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription(
			"List the project's five core documents with version, size, and last update. "+
				"Cheaper than read_document when you only need to know what changed.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
	)
}

// Handle processes the list_documents tool call.
func (t *ListDocumentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	infos, err := s.Documents()
	if err != nil {
		return nil, fmt.Errorf("listing documents for %q: %w", id, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Documents for %s\n\n", id)
	for _, info := range infos {
		fmt.Fprintf(&sb, "- **%s** (%s) — v%d, %d bytes, updated %s\n",
			ssot.Filename(info.Kind), info.Kind, info.Version, info.Size, info.UpdatedAt)
	}

	return mcp.NewToolResultText(sb.String()), nil
}
