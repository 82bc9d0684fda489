// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/HendryAvila/lorekeep/internal/config"
	"github.com/HendryAvila/lorekeep/internal/project"
	"github.com/HendryAvila/lorekeep/internal/prompts"
	"github.com/HendryAvila/lorekeep/internal/resources"
	"github.com/HendryAvila/lorekeep/internal/templates"
	"github.com/HendryAvila/lorekeep/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes every cached project database
// handle and must be called on shutdown (typically via defer). It is
// always non-nil and safe to call even if initialization failed.
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	dataDir := config.DataDir()

	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, noop, fmt.Errorf("creating template renderer: %w", err)
	}

	registry := project.New(dataDir, cfg.History.MaxTurns, renderer)
	cleanup := func() {
		if err := registry.Close(); err != nil {
			log.Printf("WARNING: closing project stores: %v", err)
		}
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"lorekeep",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register project tools ---

	createTool := tools.NewProjectCreateTool(registry)
	s.AddTool(createTool.Definition(), createTool.Handle)

	listTool := tools.NewProjectListTool(registry)
	s.AddTool(listTool.Definition(), listTool.Handle)

	settingsTool := tools.NewProjectSettingsTool(registry)
	s.AddTool(settingsTool.Definition(), settingsTool.Handle)

	deleteTool := tools.NewProjectDeleteTool(registry)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	statsTool := tools.NewProjectStatsTool(registry)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	// --- Register document tools ---

	readTool := tools.NewReadDocumentTool(registry)
	s.AddTool(readTool.Definition(), readTool.Handle)

	listDocsTool := tools.NewListDocumentsTool(registry)
	s.AddTool(listDocsTool.Definition(), listDocsTool.Handle)

	exportTool := tools.NewExportDocumentsTool(registry)
	s.AddTool(exportTool.Definition(), exportTool.Handle)

	// --- Register change gate tools ---
	//
	// Documents never change outside this pair: propose_change records
	// a pending proposal with its diff, decide_change applies or
	// rejects it in a single transaction.

	proposeTool := tools.NewProposeChangeTool(registry)
	s.AddTool(proposeTool.Definition(), proposeTool.Handle)

	decideTool := tools.NewDecideChangeTool(registry)
	s.AddTool(decideTool.Definition(), decideTool.Handle)

	listChangesTool := tools.NewListChangesTool(registry)
	s.AddTool(listChangesTool.Definition(), listChangesTool.Handle)

	// --- Register history tools ---

	recordTool := tools.NewRecordTurnTool(registry)
	s.AddTool(recordTool.Definition(), recordTool.Handle)

	historyTool := tools.NewRecentHistoryTool(registry)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	buildTool := tools.NewBuildContextTool(registry, cfg)
	s.AddTool(buildTool.Definition(), buildTool.Handle)

	// --- Register prompts ---

	resumePrompt := prompts.NewResumePrompt()
	s.AddPrompt(resumePrompt.Definition(), resumePrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(registry)
	s.AddResource(resourceHandler.ProjectsResource(), resourceHandler.HandleProjects)
	s.AddResourceTemplate(resourceHandler.DocumentTemplate(), resourceHandler.HandleDocument)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when
// initialization fails before the registry exists.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use Lorekeep effectively.
func serverInstructions() string {
	return `You have access to Lorekeep, a project memory MCP server for coding
conversations. It keeps five living documents per project plus the full
conversation history, and it assembles bounded context payloads so every
session starts informed instead of cold.

## THE FIVE DOCUMENTS

Every project carries exactly these documents (the project's single source
of truth):
1. HANDOVER — where work stands right now: current state, in-flight work,
   immediate next steps. Read this FIRST when resuming.
2. CONSTITUTION — non-negotiable rules for the project: conventions,
   constraints, things the user has told you never to do.
3. ARCHITECTURE — how the system is built: components, data flow, key
   dependencies and the reasons behind them.
4. CHECKLIST — the task list: what is done, what is pending, what is blocked.
5. DECISIONS — an append-style log of significant decisions with their
   rationale, newest entries on top.

Documents are versioned. Every approved change bumps the version by exactly
one, so "HANDOVER v7" is meaningful across sessions.

## SESSION START (resume flow)

1. Call project_list if you don't know the project ID
2. Call build_context with the project — it returns the documents (handover
   first) plus recent conversation, already trimmed to a size budget
3. Treat [HANDOVER] as the starting state and [CONSTITUTION] as binding rules
4. If you need a full untrimmed document, call read_document

## THE CHANGE GATE — CRITICAL

You can NEVER edit a document directly. Every document change flows through
a two-step gate:

1. Call propose_change with the project, the document kind, and the COMPLETE
   new content (not a fragment, not a diff — the full replacement text)
2. The tool stores a pending proposal and returns a unified diff
3. Show the diff to the user and ask for their decision
4. Call decide_change with the proposal ID and approve=true or approve=false

Rules the gate enforces:
- One pending proposal per document kind at a time. A second proposal for the
  same kind is rejected until the first is decided.
- Approving writes the document, bumps its version, and records a system turn
  in history — atomically. Rejecting changes nothing.
- If the document changed after you proposed (version conflict), the approve
  fails and the proposal stays pending: reject it, re-read the document, and
  propose again on top of the current content.
- NEVER approve a proposal the user has not seen. The user decides, not you.

## RECORDING HISTORY

Call record_turn after each meaningful exchange — role is one of user,
assistant, system, or tool. Recorded turns are what build_context retrieves
later, so record the substance of the conversation, not meta-chatter.
Pass the model name when you know it; it helps the user audit which model
said what.

## BUILDING CONTEXT

build_context assembles one deterministic payload: handover first, then
constitution, architecture, checklist, and decisions while the budget lasts,
then the newest conversation turns. When the budget is too small, the last
document is cut at a paragraph boundary and marked ...[truncated], and
nothing lower-priority is included after a cut.

Budget selection (first match wins):
- budget_chars: exact character cap
- budget_tokens: converted at ~4 characters per token
- model: looked up in the per-model table from config.yaml
- otherwise the configured default (8000 chars)

## WHEN TO UPDATE DOCUMENTS

Propose updates proactively at these moments:
- HANDOVER: at the end of a work session, or before the conversation gets
  compacted — capture state while it is fresh
- CHECKLIST: when tasks complete, appear, or get blocked
- DECISIONS: the moment a significant choice is made, with its why
- ARCHITECTURE: when components, dependencies, or data flow change
- CONSTITUTION: only when the user states a new standing rule

## IMPORTANT RULES

- Propose COMPLETE document content — the proposal replaces the whole document
- Keep HANDOVER short and current; move finished work into CHECKLIST/DECISIONS
- Never invent project state: if a document contradicts the conversation, ask
- Use project_stats to see versions, turn counts, and pending proposals at
  a glance
- export_documents writes the documents as plain .md files into the project
  tree when the user wants to read or commit them`
}
