package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/mark3labs/mcp-go/mcp"
)

// ExportDir is the default export subdirectory under a project's root path.
const ExportDir = "lorekeep"

// ExportDocumentsTool handles the export_documents MCP tool.
type ExportDocumentsTool struct {
	registry *project.Registry
}

// NewExportDocumentsTool creates an ExportDocumentsTool with the given registry.
func NewExportDocumentsTool(registry *project.Registry) *ExportDocumentsTool {
	return &ExportDocumentsTool{registry: registry}
}

// Definition returns the MCP tool definition for export_documents.
func (t *ExportDocumentsTool) Definition() mcp.Tool {
	return mcp.NewTool("export_documents",
		mcp.WithDescription(
			"Write the five core documents to disk as markdown files so they can be read in an "+
				"editor or committed to the repo. The export is one-way: edits to the files do not "+
				"flow back — document changes go through propose_change.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project ID (from project_list)"),
		),
		mcp.WithString("dir",
			mcp.Description("Target directory (default: <root_path>/lorekeep when the project has a root path)"),
		),
	)
}

// Handle processes the export_documents tool call.
func (t *ExportDocumentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, id, errResult, err := storeFor(t.registry, req)
	if errResult != nil || err != nil {
		return errResult, err
	}

	dir := req.GetString("dir", "")
	if dir == "" {
		p, err := t.registry.Get(id)
		if err != nil {
			return nil, fmt.Errorf("reading project %q: %w", id, err)
		}
		if p.RootPath == "" {
			return mcp.NewToolResultError("'dir' is required — the project has no root_path to export under"), nil
		}
		dir = filepath.Join(p.RootPath, ExportDir)
	}

	paths, err := s.ExportDocuments(dir)
	if err != nil {
		return nil, fmt.Errorf("exporting documents for %q: %w", id, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Exported %d documents to %s:\n", len(paths), dir)
	for _, path := range paths {
		fmt.Fprintf(&sb, "- %s\n", filepath.Base(path))
	}
	sb.WriteString("\nThe files are a snapshot; changes to them do not flow back into the project.")

	return mcp.NewToolResultText(sb.String()), nil
}
