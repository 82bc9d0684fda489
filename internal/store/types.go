package store

import (
	"fmt"

	"github.com/HendryAvila/lorekeep/internal/ssot"
)

// ─── Role enum ───────────────────────────────────────────────────────────────

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// validRoles is the set of allowed turn roles.
var validRoles = map[Role]bool{
	RoleUser:      true,
	RoleAssistant: true,
	RoleSystem:    true,
	RoleTool:      true,
}

// ValidateRole returns an error if the role is not recognized.
func ValidateRole(r Role) error {
	if !validRoles[r] {
		return fmt.Errorf("invalid role %q: must be one of: user, assistant, system, tool", r)
	}
	return nil
}

// ─── Proposal status enum ────────────────────────────────────────────────────

// ProposalStatus tracks the lifecycle of a change proposal. A pending
// proposal moves to exactly one of approved or rejected; both are terminal.
type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusApproved ProposalStatus = "approved"
	StatusRejected ProposalStatus = "rejected"
)

// validStatuses is the set of allowed proposal statuses.
var validStatuses = map[ProposalStatus]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(st ProposalStatus) error {
	if !validStatuses[st] {
		return fmt.Errorf("invalid proposal status %q: must be one of: pending, approved, rejected", st)
	}
	return nil
}

// ─── Core data structures ────────────────────────────────────────────────────

// Document is one SSOT document with its optimistic-concurrency version.
// Version starts at 1 when the project is seeded and increments on every
// approved write.
type Document struct {
	Kind      ssot.Kind `json:"kind"`
	Content   string    `json:"content"`
	Version   int64     `json:"version"`
	UpdatedAt string    `json:"updated_at"`
}

// DocumentInfo is the listing view of a document: metadata without content.
type DocumentInfo struct {
	Kind      ssot.Kind `json:"kind"`
	Version   int64     `json:"version"`
	UpdatedAt string    `json:"updated_at"`
	Size      int       `json:"size"`
}

// Turn is one immutable conversation entry. Seq is assigned on insert and
// strictly increases per project.
type Turn struct {
	Seq       int64  `json:"seq"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Model     string `json:"model,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Proposal is a request to overwrite one document, captured with the diff
// and document version observed at propose time.
type Proposal struct {
	ID          string         `json:"id"`
	Kind        ssot.Kind      `json:"kind"`
	Content     string         `json:"content"`
	Diff        string         `json:"diff"`
	BaseVersion int64          `json:"base_version"`
	Status      ProposalStatus `json:"status"`
	CreatedAt   string         `json:"created_at"`
	DecidedAt   *string        `json:"decided_at,omitempty"`
}
