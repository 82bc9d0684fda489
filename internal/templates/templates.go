// Package templates renders the seed content for a project's SSOT documents.
//
// Every project starts with the same five documents; the templates here give
// each one a usable skeleton so the first context build has something to say.
// Templates are compiled into the binary via go:embed, so the installed tool
// has no runtime file dependencies.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/HendryAvila/lorekeep/internal/ssot"
)

//go:embed *.md.tmpl
var files embed.FS

// Template names, one per document kind.
const (
	Handover     = "handover.md.tmpl"
	Constitution = "constitution.md.tmpl"
	Architecture = "architecture.md.tmpl"
	Checklist    = "checklist.md.tmpl"
	Decisions    = "decisions.md.tmpl"
)

// seedTemplates maps each document kind to its seed template.
var seedTemplates = map[ssot.Kind]string{
	ssot.KindHandover:     Handover,
	ssot.KindConstitution: Constitution,
	ssot.KindArchitecture: Architecture,
	ssot.KindChecklist:    Checklist,
	ssot.KindDecisions:    Decisions,
}

// ForKind returns the seed template name for a document kind. Returns empty
// string for unknown kinds.
func ForKind(k ssot.Kind) string {
	return seedTemplates[k]
}

// SeedData is the data every seed template renders with.
type SeedData struct {
	Name      string // project display name
	TechStack string // free-form tech stack description, may be empty
	Date      string // creation date, YYYY-MM-DD
}

// Renderer renders a named template with the given data.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// EmbedRenderer renders the templates compiled into the binary.
type EmbedRenderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates. Fails only if an embedded
// template is malformed, which is a build defect rather than a runtime
// condition.
func NewRenderer() (*EmbedRenderer, error) {
	t, err := template.ParseFS(files, "*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing embedded templates: %w", err)
	}
	return &EmbedRenderer{tmpl: t}, nil
}

// Render executes the named template with the given data.
func (r *EmbedRenderer) Render(name string, data any) (string, error) {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}
