// Package diff computes the unified diffs attached to change proposals.
//
// A proposal is reviewed by a human before it lands, so the diff has to read
// like the output of any ordinary diff tool. It is computed once, at propose
// time, and stored with the proposal.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// Unified returns a unified diff between old and new content. Identical
// inputs produce an empty string.
func Unified(oldContent, newContent, fromLabel, toLabel string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  contextLines,
	}

	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("computing unified diff: %w", err)
	}
	return text, nil
}

// Stats counts the added and removed lines in a unified diff. File header
// lines ("---", "+++") are not counted.
func Stats(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// header lines
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// Summary returns a short "+N -M" description of a unified diff, or
// "no changes" when the diff is empty.
func Summary(unified string) string {
	if strings.TrimSpace(unified) == "" {
		return "no changes"
	}
	added, removed := Stats(unified)
	return fmt.Sprintf("+%d -%d", added, removed)
}
