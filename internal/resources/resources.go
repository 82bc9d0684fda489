// Package resources implements the MCP resource handlers for lorekeep.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (lorekeep://...) following MCP conventions:
// a static listing at lorekeep://projects and one document per
// lorekeep://{project}/{kind}.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler manages the lorekeep resource endpoints.
type Handler struct {
	registry *project.Registry
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(registry *project.Registry) *Handler {
	return &Handler{registry: registry}
}

// ProjectsResource returns the MCP resource definition for the project listing.
func (h *Handler) ProjectsResource() mcp.Resource {
	return mcp.NewResource(
		"lorekeep://projects",
		"Registered projects",
		mcp.WithResourceDescription("All registered projects with their IDs and settings"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjects returns the registered projects as JSON.
func (h *Handler) HandleProjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := h.registry.List()
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling projects: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// DocumentTemplate returns the MCP resource template for reading one
// document of one project.
func (h *Handler) DocumentTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"lorekeep://{project}/{kind}",
		"Project document",
		mcp.WithTemplateDescription(
			"One of a project's five core documents (handover, constitution, architecture, checklist, decisions) as markdown",
		),
		mcp.WithTemplateMIMEType("text/markdown"),
	)
}

// HandleDocument resolves lorekeep://<project>/<kind> to the document content.
func (h *Handler) HandleDocument(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectID, kind, err := parseDocumentURI(req.Params.URI)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	s, err := h.registry.Store(projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResource(req.Params.URI, fmt.Sprintf("project %q not found", projectID)), nil
		}
		return nil, fmt.Errorf("opening project %q: %w", projectID, err)
	}

	doc, err := s.Document(kind)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResource(req.Params.URI, fmt.Sprintf("document %q not found in project %q", kind, projectID)), nil
		}
		return nil, fmt.Errorf("reading document %q: %w", kind, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     doc.Content,
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
