package markup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-markup/pkg/ast"
)

var (
	// ErrTemplateExists is returned when a name is registered twice.
	ErrTemplateExists = errors.New("markup: template already registered")
	// ErrTemplateNotFound is returned for names the registry does not hold.
	ErrTemplateNotFound = errors.New("markup: template not found")
)

// Registry stores compiled templates by name. Templates executed through the
// registry can splice each other through the `templates` global, with path
// segments as keys: `templates.partials.nav` (splice it with mode passthru).
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
	}
}

// Register adds a template by its Name(). Duplicate names return an error.
func (r *Registry) Register(tpl *Template) error {
	if tpl == nil {
		return fmt.Errorf("markup: template is required")
	}
	name := tpl.Name()
	if name == "" {
		return fmt.Errorf("markup: template name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[name]; exists {
		return fmt.Errorf("%w: %q", ErrTemplateExists, name)
	}

	r.templates[name] = tpl
	return nil
}

// LoadFS compiles every template document found in fsys and registers it.
func (r *Registry) LoadFS(fsys fs.FS, options ...Option) error {
	store, err := ast.LoadFS(fsys)
	if err != nil {
		return err
	}
	for _, name := range store.Names() {
		doc, _ := store.Document(name)
		tpl, err := CompileDocument(doc, options...)
		if err != nil {
			return err
		}
		if err := r.Register(tpl); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return tpl, nil
}

// MustGet panics if the template is missing.
func (r *Registry) MustGet(name string) *Template {
	tpl, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return tpl
}

// List returns a sorted list of template names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a template is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.templates[name]
	return ok
}

// Execute renders the named template into w with the `templates` global set.
func (r *Registry) Execute(w io.Writer, name string, data map[string]any) error {
	tpl, err := r.Get(name)
	if err != nil {
		return err
	}

	merged := make(map[string]any, len(data)+1)
	merged["templates"] = r.tree()
	for key, value := range data {
		merged[key] = value
	}
	return tpl.Execute(w, merged)
}

// tree nests templates by path segment. A name that collides with a
// directory keeps whichever was inserted first, in sorted order.
func (r *Registry) tree() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)

	root := make(map[string]any)
	for _, name := range names {
		segments := strings.Split(name, "/")
		node := root
		ok := true
		for _, segment := range segments[:len(segments)-1] {
			next, exists := node[segment]
			if !exists {
				child := make(map[string]any)
				node[segment] = child
				node = child
				continue
			}
			child, isMap := next.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = child
		}
		leaf := segments[len(segments)-1]
		if _, exists := node[leaf]; ok && !exists {
			node[leaf] = r.templates[name].Program()
		}
	}
	return root
}
