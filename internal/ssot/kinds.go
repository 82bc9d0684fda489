// Package ssot defines the fixed set of single-source-of-truth documents
// every project carries.
//
// Five kinds exist, no more, no fewer. Their order is not cosmetic: the
// context builder includes them by priority (handover first), and every
// listing surface reports them in the same canonical order so output is
// deterministic across calls.
package ssot

import (
	"fmt"
	"strings"
)

// Kind identifies one of the five SSOT documents of a project.
type Kind string

const (
	KindHandover     Kind = "handover"     // session-to-session state of play
	KindConstitution Kind = "constitution" // non-negotiable project rules
	KindArchitecture Kind = "architecture" // structure, components, data flow
	KindChecklist    Kind = "checklist"    // open and completed work items
	KindDecisions    Kind = "decisions"    // accepted decisions with rationale
)

// KindOrder is the canonical priority order. The handover always comes
// first; the rest follow in descending context-building priority.
var KindOrder = []Kind{
	KindHandover,
	KindConstitution,
	KindArchitecture,
	KindChecklist,
	KindDecisions,
}

// validKinds is the set of recognized document kinds.
var validKinds = map[Kind]bool{
	KindHandover:     true,
	KindConstitution: true,
	KindArchitecture: true,
	KindChecklist:    true,
	KindDecisions:    true,
}

// ValidateKind returns an error if the kind is not one of the five
// recognized documents.
func ValidateKind(k Kind) error {
	if !validKinds[k] {
		return fmt.Errorf("invalid document kind %q: must be one of: handover, constitution, architecture, checklist, decisions", k)
	}
	return nil
}

// ParseKind normalizes a caller-supplied string into a Kind. Input is
// case-insensitive and tolerates a trailing ".md" so users can pass the
// exported filename.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".md"))
	if err := ValidateKind(k); err != nil {
		return "", err
	}
	return k, nil
}

// kindFilenames maps each kind to the markdown filename used when
// documents are exported to disk.
var kindFilenames = map[Kind]string{
	KindHandover:     "HANDOVER.md",
	KindConstitution: "CONSTITUTION.md",
	KindArchitecture: "ARCHITECTURE.md",
	KindChecklist:    "CHECKLIST.md",
	KindDecisions:    "DECISIONS.md",
}

// Filename returns the export filename for a kind. Returns empty string
// for unknown kinds.
func Filename(k Kind) string {
	return kindFilenames[k]
}

// kindTitles maps each kind to its human-readable document title.
var kindTitles = map[Kind]string{
	KindHandover:     "Handover",
	KindConstitution: "Constitution",
	KindArchitecture: "Architecture",
	KindChecklist:    "Checklist",
	KindDecisions:    "Decisions",
}

// Title returns the display title for a kind. Returns empty string for
// unknown kinds.
func Title(k Kind) string {
	return kindTitles[k]
}

// SectionHeader returns the bracketed header used for a kind's section in
// an assembled context payload, e.g. "[HANDOVER]".
func SectionHeader(k Kind) string {
	return "[" + strings.ToUpper(string(k)) + "]"
}
