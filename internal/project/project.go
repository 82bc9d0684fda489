// Package project is the registry: it maps project IDs to storage
// locations, owns the project.json records, and hands out per-project
// stores.
//
// Each project is a directory under <dataDir>/projects/<id>/ holding the
// registry record (project.json) and the SQLite database (lore.db). No
// state crosses project directories, so projects are independent: deleting
// or corrupting one cannot touch another's data.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HendryAvila/lorekeep/internal/ssot"
	"github.com/HendryAvila/lorekeep/internal/store"
	"github.com/HendryAvila/lorekeep/internal/templates"
)

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// ErrProjectExists reports a create whose name is already registered.
var ErrProjectExists = errors.New("project already exists")

const (
	// ProjectsDir is the subdirectory of the data dir where projects live.
	ProjectsDir = "projects"
	// ConfigFile is the registry record inside each project directory.
	ConfigFile = "project.json"
	// DBFile is the per-project SQLite database.
	DBFile = "lore.db"
)

// Project is one registry record: identity plus the settings the stores and
// the context builder read. Only the settings (TechStack, MaxTurns) change
// after creation.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RootPath  string `json:"root_path,omitempty"`
	TechStack string `json:"tech_stack,omitempty"`
	MaxTurns  int    `json:"max_turns"`
	CreatedAt string `json:"created_at"`
}

// Registry maps project IDs to their storage and caches open store handles
// so repeated tool calls against the same project share one connection.
type Registry struct {
	dataDir  string
	maxTurns int
	renderer templates.Renderer

	mu     sync.Mutex
	stores map[string]*store.Store
}

// New creates a registry rooted at dataDir. maxTurns is the default history
// bound stamped onto new projects; renderer produces their seed documents.
func New(dataDir string, maxTurns int, renderer templates.Renderer) *Registry {
	return &Registry{
		dataDir:  dataDir,
		maxTurns: maxTurns,
		renderer: renderer,
		stores:   make(map[string]*store.Store),
	}
}

// ProjectsPath returns the directory all projects live under.
func (r *Registry) ProjectsPath() string {
	return filepath.Join(r.dataDir, ProjectsDir)
}

// ProjectPath returns one project's directory.
func (r *Registry) ProjectPath(id string) string {
	return filepath.Join(r.ProjectsPath(), id)
}

func (r *Registry) configPath(id string) string {
	return filepath.Join(r.ProjectPath(id), ConfigFile)
}

func (r *Registry) dbPath(id string) string {
	return filepath.Join(r.ProjectPath(id), DBFile)
}

// Create registers a project and seeds its five documents from the
// templates. The ID is a slug of the name. A name already registered fails
// with ErrProjectExists; a slug collision between different names gets a
// numeric suffix (-2, -3, ...). A create that fails partway leaves nothing
// behind: no record, no directory.
func (r *Registry) Create(name, rootPath, techStack string) (*Project, error) {
	name = strings.TrimSpace(name)

	existing, err := r.List()
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("project %q: %w", name, ErrProjectExists)
		}
	}

	if err := os.MkdirAll(r.ProjectsPath(), 0o755); err != nil {
		return nil, fmt.Errorf("creating projects directory: %w", err)
	}

	// Handle slug collisions.
	base := Slugify(name)
	id := base
	dir := r.ProjectPath(id)
	suffix := 2
	for {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		id = fmt.Sprintf("%s-%d", base, suffix)
		dir = r.ProjectPath(id)
		suffix++
	}

	p := &Project{
		ID:        id,
		Name:      name,
		RootPath:  rootPath,
		TechStack: techStack,
		MaxTurns:  r.maxTurns,
		CreatedAt: timeNow().UTC().Format("2006-01-02 15:04:05"),
	}

	seeds, err := r.seedContents(p)
	if err != nil {
		return nil, err
	}

	// The database is seeded first and project.json written last: the
	// record is what makes a project visible to Get and List, so a create
	// that fails partway registers nothing. Failure paths remove the
	// directory, keeping the slug free for a retry.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}
	s, err := store.Open(store.Config{Path: r.dbPath(id), MaxTurns: p.MaxTurns})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("opening store for %q: %w", id, err)
	}
	if err := s.Seed(seeds); err != nil {
		s.Close()
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("seeding documents for %q: %w", id, err)
	}
	if err := r.writeConfig(p); err != nil {
		s.Close()
		_ = os.RemoveAll(dir)
		return nil, err
	}

	r.mu.Lock()
	r.stores[id] = s
	r.mu.Unlock()

	return p, nil
}

// seedContents renders the initial body of every document kind.
func (r *Registry) seedContents(p *Project) (map[ssot.Kind]string, error) {
	data := templates.SeedData{
		Name:      p.Name,
		TechStack: p.TechStack,
		Date:      timeNow().UTC().Format("2006-01-02"),
	}

	out := make(map[ssot.Kind]string, len(ssot.KindOrder))
	for _, kind := range ssot.KindOrder {
		content, err := r.renderer.Render(templates.ForKind(kind), data)
		if err != nil {
			return nil, fmt.Errorf("rendering %s template: %w", kind, err)
		}
		out[kind] = content
	}
	return out, nil
}

// Get loads one project record.
func (r *Registry) Get(id string) (*Project, error) {
	data, err := os.ReadFile(r.configPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %q: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("reading project record for %q: %w", id, err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s for %q: %w", ConfigFile, id, err)
	}
	return &p, nil
}

// List returns all registered projects sorted by name. Directories without
// a readable record are skipped: delete-without-purge leaves data on disk
// but removes the record, which is exactly how a project goes invisible.
func (r *Registry) List() ([]Project, error) {
	entries, err := os.ReadDir(r.ProjectsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading projects directory: %w", err)
	}

	var result []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := r.Get(entry.Name())
		if err != nil {
			continue
		}
		result = append(result, *p)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// UpdateSettings changes the mutable settings. An empty techStack or a
// non-positive maxTurns keeps the current value.
func (r *Registry) UpdateSettings(id, techStack string, maxTurns int) (*Project, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if techStack != "" {
		p.TechStack = techStack
	}
	if maxTurns > 0 {
		p.MaxTurns = maxTurns
	}

	if err := r.writeConfig(p); err != nil {
		return nil, err
	}

	// A cached store carries the old MaxTurns; drop it so the next use
	// reopens with the new setting.
	r.mu.Lock()
	if s, ok := r.stores[id]; ok {
		s.Close()
		delete(r.stores, id)
	}
	r.mu.Unlock()

	return p, nil
}

// Delete unregisters a project. With purge the whole directory goes; without
// it only the record file is removed, leaving lore.db on disk for manual
// recovery while the project disappears from every listing.
func (r *Registry) Delete(id string, purge bool) error {
	if _, err := r.Get(id); err != nil {
		return err
	}

	r.mu.Lock()
	if s, ok := r.stores[id]; ok {
		s.Close()
		delete(r.stores, id)
	}
	r.mu.Unlock()

	if purge {
		if err := os.RemoveAll(r.ProjectPath(id)); err != nil {
			return fmt.Errorf("purging project %q: %w", id, err)
		}
		return nil
	}

	if err := os.Remove(r.configPath(id)); err != nil {
		return fmt.Errorf("removing project record for %q: %w", id, err)
	}
	return nil
}

// Store returns the project's store, opening and caching it on first use.
func (r *Registry) Store(id string) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[id]; ok {
		return s, nil
	}

	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(store.Config{
		Path:     r.dbPath(id),
		MaxTurns: p.MaxTurns,
	})
	if err != nil {
		return nil, fmt.Errorf("opening store for %q: %w", id, err)
	}
	r.stores[id] = s
	return s, nil
}

// Close closes every cached store handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, s := range r.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing store for %q: %w", id, err)
		}
		delete(r.stores, id)
	}
	return firstErr
}

func (r *Registry) writeConfig(p *Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling project record: %w", err)
	}

	path := r.configPath(p.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
