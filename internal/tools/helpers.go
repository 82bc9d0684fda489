// Package tools provides the MCP tool handlers for the lorekeep server.
//
// Each tool follows the same pattern:
// - A struct with its dependencies (the project registry) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Error convention: problems the caller can correct (missing argument,
// unknown project, stale proposal) come back as tool errors so the model
// reads them and retries. Storage and I/O failures come back as Go errors
// and surface as protocol-level failures.
package tools

import (
	"errors"
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/ssot"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// hasArg reports whether the caller supplied the key at all, so required
// booleans can be told apart from a defaulted false.
func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

// storeFor resolves the required 'project' argument to the project's store.
// A non-nil result is a user-facing problem (missing argument, unknown
// project); a non-nil error is a system failure.
func storeFor(registry *project.Registry, req mcp.CallToolRequest) (*store.Store, string, *mcp.CallToolResult, error) {
	id := req.GetString("project", "")
	if id == "" {
		return nil, "", mcp.NewToolResultError("'project' is required — use project_list to see registered project IDs"), nil
	}
	s, err := registry.Store(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", mcp.NewToolResultError(fmt.Sprintf("project %q not found — use project_list to see registered projects", id)), nil
		}
		return nil, "", nil, fmt.Errorf("opening project %q: %w", id, err)
	}
	return s, id, nil, nil
}

// kindArg parses the required 'kind' argument into a document kind.
func kindArg(req mcp.CallToolRequest) (ssot.Kind, *mcp.CallToolResult) {
	raw := req.GetString("kind", "")
	if raw == "" {
		return "", mcp.NewToolResultError("'kind' is required: one of handover, constitution, architecture, checklist, decisions")
	}
	kind, err := ssot.ParseKind(raw)
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return kind, nil
}
