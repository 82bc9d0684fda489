// Package contextbuild assembles the bounded context payload that accompanies
// a model request: the project's SSOT documents in priority order, then as
// much recent conversation as the budget still allows.
//
// The builder is pure. It reads project state through a narrow interface,
// writes nothing, and for identical documents, history, and budget it
// produces byte-identical output. Oversized input degrades to a truncated
// payload rather than an error; the only errors Build returns are storage
// failures from the source.
package contextbuild

import (
	"fmt"
	"iter"
	"strings"

	"github.com/HendryAvila/lorekeep/internal/ssot"
	"github.com/HendryAvila/lorekeep/internal/store"
)

// truncMarker is appended to a document body that was cut to fit. Its
// length counts against the budget like any other payload byte.
const truncMarker = "\n...[truncated]"

// turnsHeader introduces the conversation lines in the payload text.
const turnsHeader = "[RECENT CONVERSATION]"

// Source is the read surface the builder needs. *store.Store satisfies it.
type Source interface {
	Document(kind ssot.Kind) (*store.Document, error)
	RecentTurns(limit int) iter.Seq2[store.Turn, error]
}

// Payload is one assembled context. It is built fresh per request and never
// persisted.
type Payload struct {
	// Text is the canonical output: document sections in priority order,
	// then recent turns newest first.
	Text string `json:"text"`
	// Size is len(Text) in bytes, always within the resolved budget.
	Size int `json:"size"`
	// Sections lists the document kinds that made it in, in payload order.
	Sections []string `json:"sections"`
	// Truncated reports whether a document had to be cut to fit.
	Truncated bool `json:"truncated"`
	// TurnCount is the number of conversation turns included.
	TurnCount int `json:"turn_count"`
}

// Build assembles a payload within budget. The handover document leads and
// is included in full when it fits; the remaining documents follow in
// canonical order until the budget runs out. The last document that does
// not fit whole is cut at a paragraph boundary and marked, and nothing of
// lower priority is included after it. Whatever room is left goes to the
// newest conversation turns, stopping before the first turn that would
// overflow.
func Build(src Source, budget Budget) (*Payload, error) {
	est := NewTokenEstimator()
	limit := budget.Limit(est)

	var (
		sb        strings.Builder
		used      int
		sections  []string
		truncated bool
	)

	for _, kind := range ssot.KindOrder {
		doc, err := src.Document(kind)
		if err != nil {
			return nil, fmt.Errorf("build context: read %s: %w", kind, err)
		}

		sep := ""
		if sb.Len() > 0 {
			sep = "\n\n"
		}
		header := ssot.SectionHeader(kind)
		body := strings.TrimRight(doc.Content, "\n")
		section := header
		if body != "" {
			section += "\n" + body
		}

		if used+len(sep)+len(section) <= limit {
			sb.WriteString(sep)
			sb.WriteString(section)
			used += len(sep) + len(section)
			sections = append(sections, string(kind))
			continue
		}

		// The whole document does not fit. Cut this one at a paragraph
		// boundary and include nothing of lower priority after it.
		room := limit - used - len(sep) - len(header) - 1 - len(truncMarker)
		if cut := truncateAt(body, room); cut != "" {
			sb.WriteString(sep)
			sb.WriteString(header)
			sb.WriteString("\n")
			sb.WriteString(cut)
			sb.WriteString(truncMarker)
			used += len(sep) + len(header) + 1 + len(cut) + len(truncMarker)
			sections = append(sections, string(kind))
		}
		truncated = true
		break
	}

	// Newest turns fill whatever room is left. limit 0 defers to the
	// store's configured MaxTurns; the budget is the binding constraint.
	turnCount := 0
	for turn, err := range src.RecentTurns(0) {
		if err != nil {
			return nil, fmt.Errorf("build context: recent turns: %w", err)
		}

		line := fmt.Sprintf("[%d] %s: %s", turn.Seq, turn.Role, turn.Content)
		need := 1 + len(line)
		if turnCount == 0 {
			need = len(turnsHeader) + 1 + len(line)
			if sb.Len() > 0 {
				need += 2
			}
		}
		if used+need > limit {
			break
		}

		if turnCount == 0 {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(turnsHeader)
		}
		sb.WriteString("\n")
		sb.WriteString(line)
		used += need
		turnCount++
	}

	return &Payload{
		Text:      sb.String(),
		Size:      sb.Len(),
		Sections:  sections,
		Truncated: truncated,
		TurnCount: turnCount,
	}, nil
}

// truncateAt cuts content to at most maxChars, preferring a paragraph
// break, then a line break, then a word break, as long as the boundary
// falls past the halfway point. The truncation marker is the caller's to
// account for, not added here.
func truncateAt(content string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(content) <= maxChars {
		return content
	}

	cut := content[:maxChars]
	if idx := strings.LastIndex(cut, "\n\n"); idx > maxChars/2 {
		return cut[:idx]
	}
	if idx := strings.LastIndex(cut, "\n"); idx > maxChars/2 {
		return cut[:idx]
	}
	if idx := strings.LastIndex(cut, " "); idx > maxChars/2 {
		return cut[:idx]
	}
	return cut
}
