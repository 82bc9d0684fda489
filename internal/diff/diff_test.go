package diff

import (
	"strings"
	"testing"
)

func TestUnified_Basic(t *testing.T) {
	oldContent := "line one\nline two\nline three\n"
	newContent := "line one\nline 2\nline three\n"

	got, err := Unified(oldContent, newContent, "doc (v1)", "doc (proposed)")
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}

	checks := []string{
		"--- doc (v1)",
		"+++ doc (proposed)",
		"-line two",
		"+line 2",
		" line one",
	}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Errorf("diff missing %q in:\n%s", check, got)
		}
	}
}

func TestUnified_IdenticalContent(t *testing.T) {
	content := "same\ncontent\n"

	got, err := Unified(content, content, "a", "b")
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}
	if got != "" {
		t.Errorf("diff of identical content = %q, want empty string", got)
	}
}

func TestUnified_EmptyToContent(t *testing.T) {
	got, err := Unified("", "hello\nworld\n", "a", "b")
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}

	if !strings.Contains(got, "+hello") || !strings.Contains(got, "+world") {
		t.Errorf("diff from empty missing additions:\n%s", got)
	}
}

func TestUnified_NoTrailingNewline(t *testing.T) {
	// Content without a trailing newline must still diff cleanly.
	got, err := Unified("alpha", "beta", "a", "b")
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}
	if !strings.Contains(got, "-alpha") || !strings.Contains(got, "+beta") {
		t.Errorf("diff missing changed lines:\n%s", got)
	}
}

func TestStats(t *testing.T) {
	unified, err := Unified("a\nb\nc\n", "a\nx\ny\nc\n", "old", "new")
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}

	added, removed := Stats(unified)
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestStats_IgnoresHeaders(t *testing.T) {
	unified, err := Unified("a\n", "b\n", "old", "new")
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}

	// One real removal and one real addition; the ---/+++ headers must not
	// inflate the counts.
	added, removed := Stats(unified)
	if added != 1 || removed != 1 {
		t.Errorf("Stats = +%d -%d, want +1 -1", added, removed)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name    string
		unified string
		want    string
	}{
		{"empty diff", "", "no changes"},
		{"whitespace only", "  \n", "no changes"},
		{"real diff", "--- a\n+++ b\n@@ -1 +1 @@\n-x\n+y\n+z\n", "+2 -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.unified); got != tt.want {
				t.Errorf("Summary = %q, want %q", got, tt.want)
			}
		})
	}
}
